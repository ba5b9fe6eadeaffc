package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// keyPrefix 缓存键的命名空间前缀
const keyPrefix = "qa:"

// Normalize 规范化问题文本:去除首尾空白、转小写、压缩连续空白为单个空格
// 只有大小写或空白不同的问题会规范化为同一个文本
func Normalize(question string) string {
	return strings.Join(strings.Fields(strings.ToLower(question)), " ")
}

// Key 根据规范化后的问题文本计算缓存键
// 同一问题(忽略大小写和空白差异)总是得到同一个键
func Key(question string) string {
	sum := sha256.Sum256([]byte(Normalize(question)))
	return keyPrefix + hex.EncodeToString(sum[:])
}
