package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedPayload 生成端输出无法解析为四元素数组
var ErrMalformedPayload = errors.New("malformed generator output")

const (
	minScore = 1
	maxScore = 10
)

// Payload 生成端的位置式载荷,四个槽位各自有独立的强制转换规则
// 与最终落库的记录类型隔离:槽位 1 的问题回显和槽位 2 的保留值在这里
// 原样保留,是否采信由调用方决定
type Payload struct {
	Score    int             // 槽位 0:数值评分,四舍五入后收敛到 [1,10]
	Question string          // 槽位 1:生成端回显的问题,不受信任
	Reserved json.RawMessage // 槽位 2:保留槽位,约定恒为 null
	Answer   string          // 槽位 3:答案文本,已去除首尾空白
}

// ParsePayload 解析生成端的原始输出
// 生成端经常把 JSON 数组包在说明文字里,所以先整体解析,失败后回退到
// 首个 [ 与最后一个 ] 之间的子串。两次都失败或数组长度不为 4 时判定为
// 格式错误;评分槽位的转换失败不致命,按文档默认值 1 处理
func ParsePayload(raw string) (*Payload, error) {
	slots, ok := extractArray(raw)
	if !ok || len(slots) != 4 {
		return nil, fmt.Errorf("%w: expected [score, question, null, answer]", ErrMalformedPayload)
	}

	return &Payload{
		Score:    coerceScore(slots[0]),
		Question: coerceString(slots[1]),
		Reserved: slots[2],
		Answer:   strings.TrimSpace(coerceString(slots[3])),
	}, nil
}

// extractArray 两段式解析:先整体,再取方括号包围的子串
// 只有整体不是合法 JSON 时才回退到子串;整体是合法 JSON 但不是数组
// (比如对象里包着数组)说明生成端没有遵守约定,直接判为格式错误
func extractArray(raw string) ([]json.RawMessage, bool) {
	var whole json.RawMessage
	if err := json.Unmarshal([]byte(raw), &whole); err == nil {
		return rawToSlots(whole)
	}

	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end <= start {
		return nil, false
	}

	return rawToSlots(json.RawMessage(raw[start : end+1]))
}

// rawToSlots 把一段 JSON 解释为槽位数组,非数组返回 false
func rawToSlots(raw json.RawMessage) ([]json.RawMessage, bool) {
	var slots []json.RawMessage
	if err := json.Unmarshal(raw, &slots); err != nil || slots == nil {
		return nil, false
	}
	return slots, true
}

// coerceScore 把评分槽位转换为 [1,10] 内的整数
// 数值和数字字符串都接受,先转实数再四舍五入;转换失败默认 1
func coerceScore(raw json.RawMessage) int {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return minScore
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return minScore
		}
		f = v
	}

	// 在浮点域内收敛再转整型:极端值直接转 int 是实现定义行为,
	// 巨大的正数可能落到 int 的负端,把 clamp 推向错误的一侧
	if math.IsNaN(f) {
		return minScore
	}
	if f < minScore {
		return minScore
	}
	if f > maxScore {
		return maxScore
	}
	return int(math.Round(f))
}

// coerceString 把任意槽位转换为字符串,非字符串值退化为其 JSON 文本
func coerceString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
