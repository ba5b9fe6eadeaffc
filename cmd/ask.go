package cmd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	askAPI      string
	askQuestion string
)

// askCmd 命令行客户端,向 /ask 接口提问并打印评分与答案
var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "向服务提问并打印评分与答案",
	RunE:  runAsk,
}

func init() {
	defaultAPI := os.Getenv("QALOOP_API_URL")
	if defaultAPI == "" {
		defaultAPI = "http://localhost:8080/ask"
	}

	askCmd.Flags().StringVar(&askAPI, "api", defaultAPI, "/ask 接口地址")
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "要提问的问题,不传则从终端读取")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(askQuestion)
	if question == "" {
		fmt.Print("Pregunta: ")
		reader := bufio.NewReader(os.Stdin)
		line, _ := reader.ReadString('\n')
		question = strings.TrimSpace(line)
	}
	if question == "" {
		return fmt.Errorf("no se ingresó pregunta")
	}

	payload, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Post(askAPI, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("error llamando a la API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Detail != "" {
			return fmt.Errorf("error de la API (%d): %s", resp.StatusCode, apiErr.Detail)
		}
		return fmt.Errorf("error de la API: status %d", resp.StatusCode)
	}

	var data struct {
		Row struct {
			Score  *int    `json:"score"`
			Answer *string `json:"answer"`
		} `json:"row"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return fmt.Errorf("respuesta inesperada de la API: %w", err)
	}
	if data.Row.Score == nil || data.Row.Answer == nil {
		return fmt.Errorf("respuesta inesperada de la API (faltan campos)")
	}

	fmt.Printf("Score: %d\nRespuesta: %s\n", *data.Row.Score, *data.Row.Answer)
	return nil
}
