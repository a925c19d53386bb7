package model

const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
)

type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Message     string        `json:"message" validate:"required"`
	System      string        `json:"system,omitempty"`
	History     []ChatMessage `json:"history,omitempty" validate:"omitempty,dive"`
	Model       string        `json:"model,omitempty"`
	Provider    string        `json:"provider,omitempty" validate:"omitempty,oneof=openai openrouter"`
	Temperature *float32      `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
}

type ChatResponse struct {
	Content string `json:"content"`
	Model   string `json:"model"`
}

type BlogArticleRequest struct {
	Keyword              string   `json:"keyword" validate:"required"`
	Language             string   `json:"language,omitempty" validate:"omitempty,oneof=ja en"`
	TargetAudience       string   `json:"target_audience,omitempty"`
	WritingStyle         string   `json:"writing_style,omitempty"`
	SectionCount         int      `json:"section_count,omitempty" validate:"omitempty,min=3,max=8"`
	Provider             string   `json:"provider,omitempty" validate:"omitempty,oneof=openai openrouter"`
	Model                string   `json:"model,omitempty"`
	ClarificationAnswers []string `json:"clarification_answers,omitempty"`
}

type BlogSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type BlogArticleResponse struct {
	NeedClarification bool          `json:"need_clarification"`
	Questions         []string      `json:"questions,omitempty"`
	Title             string        `json:"title,omitempty"`
	Outline           []string      `json:"outline,omitempty"`
	Sections          []BlogSection `json:"sections,omitempty"`
	FinalArticle      string        `json:"final_article,omitempty"`
}
