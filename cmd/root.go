package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "qaloop",
	Short: "带缓存与持久层的问答解析服务",
	Long: `qaloop 按 缓存 -> 数据库 -> 生成端 的固定顺序解析自然语言问题,
双未命中时调用外部生成端,并把结果写回数据库与缓存。`,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径")
}
