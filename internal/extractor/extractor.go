// Package extractor 借助 OpenAI 兼容的大模型，把粘贴的课表文本转换为结构化课程行。
package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"

	"routine-hub/backend/config"
)

var (
	ErrEmptyInput     = errors.New("待解析文本为空")
	ErrNotConfigured  = errors.New("未配置 AI 接口密钥")
	ErrEmptyReply     = errors.New("模型未返回内容")
	ErrUnparsableJSON = errors.New("模型返回内容不是合法的课程 JSON")
)

// Row 模型抽取出的一行课程，字段名与远程 routine 表一致
type Row struct {
	Subject        string   `json:"subject"         validate:"required"`
	Code           string   `json:"code"            validate:"required"`
	Teacher        string   `json:"teacher"         validate:"required"`
	TeacherInitial string   `json:"teacher_initial" validate:"required"`
	StartTime      string   `json:"start_time"      validate:"required,hhmm"`
	EndTime        string   `json:"end_time"        validate:"required,hhmm"`
	Room           string   `json:"room"            validate:"required"`
	Day            string   `json:"day"             validate:"required,weekday"`
	Type           string   `json:"type,omitempty"  validate:"omitempty,oneof=Lecture Lab Workshop"`
	Section        string   `json:"section"         validate:"required"`
	SubSection     *string  `json:"sub_section"`
	Credits        *float64 `json:"credits,omitempty" validate:"omitempty,gte=0"`
}

const systemPrompt = `Extract university class routine data from the text the user provides.
Return a JSON object {"classes": [...]} where every element has these exact keys:
- subject (string)
- code (string, e.g. CSE123)
- teacher (string, full name)
- teacher_initial (string, e.g. ABC)
- start_time (string, HH:mm format, 24h)
- end_time (string, HH:mm format, 24h)
- room (string, e.g. KT-802)
- day (string, e.g. Sunday)
- type (string, "Lecture" or "Lab")
- section (string, e.g. 69_F)
- sub_section (string, if Lab then F1/F2, else null)
Do not invent classes that are not present in the text.`

// Extractor 文本抽取器
type Extractor struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// New 创建抽取器；未配置 api_key 时返回 ErrNotConfigured
func New(cfg *config.AIConfig, logger *zap.Logger) (*Extractor, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Extractor{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: logger,
	}, nil
}

// Extract 调用模型并解析结果；零行不是错误，由调用方决定如何处理
func (e *Extractor) Extract(ctx context.Context, text string) ([]Row, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "TEXT TO PARSE:\n" + text},
		},
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "routine_rows",
				Schema: responseSchema(),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("调用 AI 接口失败: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyReply
	}

	rows, err := ParseRows(resp.Choices[0].Message.Content)
	if err != nil {
		e.logger.Warn("解析模型输出失败", zap.Error(err), zap.Int("content_len", len(resp.Choices[0].Message.Content)))
		return nil, err
	}
	e.logger.Info("AI 抽取完成", zap.Int("rows", len(rows)), zap.Int("total_tokens", resp.Usage.TotalTokens))
	return rows, nil
}

// ParseRows 解析模型回复：优先 {"classes": [...]}，其次裸数组
func ParseRows(content string) ([]Row, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyReply
	}

	if obj := extractJSONObject(content); obj != "" && !strings.HasPrefix(content, "[") {
		var wrapper struct {
			Classes *[]Row `json:"classes"`
		}
		if err := json.Unmarshal([]byte(obj), &wrapper); err == nil && wrapper.Classes != nil {
			return nonNil(*wrapper.Classes), nil
		}
	}

	if arr := extractJSONArray(content); arr != "" {
		var rows []Row
		if err := json.Unmarshal([]byte(arr), &rows); err == nil {
			return nonNil(rows), nil
		}
	}
	return nil, ErrUnparsableJSON
}

func nonNil(rows []Row) []Row {
	if rows == nil {
		return make([]Row, 0)
	}
	return rows
}

func responseSchema() *jsonschema.Definition {
	str := jsonschema.Definition{Type: jsonschema.String}
	row := jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"subject":         str,
			"code":            str,
			"teacher":         str,
			"teacher_initial": str,
			"start_time":      {Type: jsonschema.String, Description: "HH:mm, 24h"},
			"end_time":        {Type: jsonschema.String, Description: "HH:mm, 24h"},
			"room":            str,
			"day":             {Type: jsonschema.String, Enum: []string{"Saturday", "Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}},
			"type":            {Type: jsonschema.String, Enum: []string{"Lecture", "Lab", "Workshop"}},
			"section":         str,
			"sub_section":     {Type: jsonschema.String, Description: "F1/F2 for labs, otherwise null"},
		},
		Required: []string{"subject", "code", "teacher", "teacher_initial", "start_time", "end_time", "room", "day", "section"},
	}
	return &jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"classes": {Type: jsonschema.Array, Items: &row},
		},
		Required: []string{"classes"},
	}
}
