package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go-auth-api/internal/llm"
	"go-auth-api/internal/model"
)

const (
	blogTemperature     float32 = 0.3
	defaultSectionCount         = 4
	defaultBlogLanguage         = "ja"
)

type blogCopy struct {
	unspecified      string
	defaultAudience  string
	defaultStyle     string
	parseQuestion    string
	defaultQuestions []string
	titleSuffix      string
	outline          func(keyword string) []string
	answersLabel     string
	writeIn          string
	systemIntent     string
	systemOutline    string
	systemSection    string
	systemCritic     string
	systemRefine     string
	systemEditor     string
}

var blogCopies = map[string]blogCopy{
	"ja": {
		unspecified:     "未指定",
		defaultAudience: "一般読者",
		defaultStyle:    "フラットで丁寧",
		parseQuestion:   "目的や読者像について、もう少し詳しく教えてください。",
		defaultQuestions: []string{
			"この記事で読者に最も伝えたいメッセージは何ですか？",
			"想定読者の知識レベル（初心者/中級/上級）は？",
			"記事の目的（教育/販促/採用ブランディングなど）は？",
		},
		titleSuffix: "について知る",
		outline: func(kw string) []string {
			return []string{kw + "とは", kw + "の基本", "実践: " + kw, "まとめと次の一歩"}
		},
		answersLabel:  "補足: ",
		writeIn:       "Write in Japanese.",
		systemIntent:  "あなたはコンテンツ戦略の担当者です。意図が読み取れない場合は短い確認質問を返します。",
		systemOutline: "あなたは記事構成の担当者です。読みやすい見出し構成を作ります。",
		systemSection: "あなたはプロのライターです。各セクションを日本語で約1000文字書きます。",
		systemCritic:  "あなたは内容の検査担当です。トピックとの整合性と指示の遵守を確認します。",
		systemRefine:  "あなたは編集者です。指摘に従って文章を直します。",
		systemEditor:  "あなたは校正担当の編集者です。流れと一貫性と誤字を確認し、最終稿を仕上げます。",
	},
	"en": {
		unspecified:     "unspecified",
		defaultAudience: "general readers",
		defaultStyle:    "plain and polite",
		parseQuestion:   "Could you tell me a little more about the goal and the intended readers?",
		defaultQuestions: []string{
			"What is the single most important message for readers?",
			"What is the readers' level (beginner/intermediate/advanced)?",
			"What is the goal of the article (education, promotion, hiring, ...)?",
		},
		titleSuffix: ": an introduction",
		outline: func(kw string) []string {
			return []string{"What is " + kw, kw + " basics", "In practice: " + kw, "Wrap-up and next steps"}
		},
		answersLabel:  "Additional context: ",
		writeIn:       "Write in English.",
		systemIntent:  "You plan content. When the intent is unclear, reply with short clarifying questions.",
		systemOutline: "You plan article structure. Produce a clear list of section headings.",
		systemSection: "You are a professional writer. Write roughly 1000 words per section.",
		systemCritic:  "You review drafts for topic adherence and instruction compliance.",
		systemRefine:  "You are an editor who revises text according to a critique.",
		systemEditor:  "You are a careful editor. Check flow, consistency and typos, then produce the final article.",
	},
}

type intentResult struct {
	NeedClarification bool     `json:"need_clarification"`
	Questions         []string `json:"questions"`
	IntentSummary     string   `json:"intent_summary"`
}

type outlineResult struct {
	Title   string   `json:"title"`
	Outline []string `json:"outline"`
}

type critiqueResult struct {
	OK         *bool    `json:"ok"`
	Issues     []string `json:"issues"`
	Suggestion string   `json:"suggestion"`
}

type BlogService struct {
	providers completerResolver
	recorder  llmRecorder
}

func NewBlogService(providers completerResolver, recorder llmRecorder) *BlogService {
	return &BlogService{providers: providers, recorder: recorder}
}

// Generate runs the intent, outline, section, critique and editing steps.
// It stops after the intent step when clarification is needed and the
// caller has not answered yet.
func (s *BlogService) Generate(ctx context.Context, req model.BlogArticleRequest) (model.BlogArticleResponse, error) {
	provider := providerName(req.Provider)
	client, defaultModel, err := s.providers.Resolve(provider)
	if err != nil {
		return model.BlogArticleResponse{}, err
	}

	language := req.Language
	if language == "" {
		language = defaultBlogLanguage
	}
	text, ok := blogCopies[language]
	if !ok {
		text = blogCopies[defaultBlogLanguage]
	}

	sectionCount := req.SectionCount
	if sectionCount <= 0 {
		sectionCount = defaultSectionCount
	}

	run := &blogRun{
		client:   client,
		model:    orDefaultString(req.Model, defaultModel),
		provider: provider,
		recorder: s.recorder,
	}

	intentRaw, err := run.ask(ctx, text.systemIntent, fmt.Sprintf(
		"Infer what kind of blog post the user wants from the keyword below. "+
			"Ask at most three clarifying questions if needed.\n\n"+
			"Keyword: %s\nAudience: %s\nStyle: %s\n\n"+
			"Answer in JSON: {\"need_clarification\": true|false, \"questions\": [string], \"intent_summary\": string}",
		req.Keyword, orDefaultString(req.TargetAudience, text.unspecified), orDefaultString(req.WritingStyle, text.unspecified)))
	if err != nil {
		return model.BlogArticleResponse{}, err
	}

	var intent intentResult
	if !decodeLenient(intentRaw, &intent) {
		intent = intentResult{NeedClarification: true, Questions: []string{text.parseQuestion}}
	}

	if intent.NeedClarification && len(req.ClarificationAnswers) == 0 {
		questions := intent.Questions
		if len(questions) == 0 {
			questions = text.defaultQuestions
		}
		return model.BlogArticleResponse{NeedClarification: true, Questions: questions}, nil
	}

	summary := intent.IntentSummary
	if len(req.ClarificationAnswers) > 0 {
		summary += "\n" + text.answersLabel + strings.Join(req.ClarificationAnswers, " / ")
	}
	if strings.TrimSpace(summary) == "" {
		summary = req.Keyword
	}

	outlineRaw, err := run.ask(ctx, text.systemOutline, fmt.Sprintf(
		"Write %d section headings for a blog post in a logical order.\n\n"+
			"Intent: %s\n\n"+
			"Answer in JSON: {\"title\": string, \"outline\": [string]}",
		sectionCount, summary))
	if err != nil {
		return model.BlogArticleResponse{}, err
	}

	var outline outlineResult
	decodeLenient(outlineRaw, &outline)

	title := outline.Title
	if title == "" {
		title = req.Keyword + text.titleSuffix
	}
	headings := outline.Outline
	if len(headings) == 0 {
		headings = text.outline(req.Keyword)
	}
	if len(headings) > sectionCount {
		headings = headings[:sectionCount]
	}

	audience := orDefaultString(req.TargetAudience, text.defaultAudience)
	style := orDefaultString(req.WritingStyle, text.defaultStyle)

	sections := make([]model.BlogSection, 0, len(headings))
	for _, heading := range headings {
		content, err := run.ask(ctx, text.systemSection, fmt.Sprintf(
			"Article title: %s\nSection heading: %s\nAudience: %s\nStyle: %s\n\n"+
				"Requirements:\n"+
				"- explain step by step so beginners can follow\n"+
				"- use examples and analogies\n"+
				"- keep the section self-contained\n"+
				"- do not ask the reader for more information\n"+
				"- stay on the main topic: %s\n\n%s",
			title, heading, audience, style, req.Keyword, text.writeIn))
		if err != nil {
			return model.BlogArticleResponse{}, err
		}
		sections = append(sections, model.BlogSection{Title: heading, Content: content})
	}

	body := joinSections(sections)

	critiqueRaw, err := run.ask(ctx, text.systemCritic, fmt.Sprintf(
		"Main topic: %s\nAudience: %s\n"+
			"Constraints: stays on topic, asks no questions, enough length, clear language.\n\n"+
			"Text:\n%s\n\n"+
			"Answer in JSON: {\"ok\": true|false, \"issues\": [string], \"suggestion\": string}",
		req.Keyword, audience, body))
	if err != nil {
		return model.BlogArticleResponse{}, err
	}

	var critique critiqueResult
	if decodeLenient(critiqueRaw, &critique) && critique.OK != nil && !*critique.OK {
		issues := strings.Join(critique.Issues, "\n") + "\n" + critique.Suggestion
		body, err = run.ask(ctx, text.systemRefine, fmt.Sprintf(
			"Main topic: %s\nAudience: %s\nIssues:\n%s\n\nOriginal text:\n%s\n\n"+
				"Fix every issue, fill gaps without asking questions and stay on topic. "+
				"Output only the new text. %s",
			req.Keyword, audience, issues, body, text.writeIn))
		if err != nil {
			return model.BlogArticleResponse{}, err
		}
	}

	final, err := run.ask(ctx, text.systemEditor, fmt.Sprintf(
		"Article title: %s\n\n# Sections\n%s\n\n"+
			"Output the final article as Markdown with headings. "+
			"Stay on the main topic (%s) and do not leave template text or questions for the user. %s",
		title, body, req.Keyword, text.writeIn))
	if err != nil {
		return model.BlogArticleResponse{}, err
	}

	slog.InfoContext(ctx, "blog article generated", "provider", provider, "model", run.model, "sections", len(sections))
	return model.BlogArticleResponse{
		NeedClarification: false,
		Title:             title,
		Outline:           headings,
		Sections:          sections,
		FinalArticle:      final,
	}, nil
}

type blogRun struct {
	client   llm.Completer
	model    string
	provider string
	recorder llmRecorder
}

func (r *blogRun) ask(ctx context.Context, system string, prompt string) (string, error) {
	completion, err := r.client.Complete(ctx, llm.Request{
		Model: r.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: system},
			{Role: llm.RoleUser, Content: prompt},
		},
		Temperature: blogTemperature,
	})
	if r.recorder != nil {
		r.recorder.RecordLLM(r.provider, err)
	}
	if err != nil {
		return "", err
	}
	return completion.Content, nil
}

func joinSections(sections []model.BlogSection) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		parts = append(parts, "## "+s.Title+"\n\n"+s.Content)
	}
	return strings.Join(parts, "\n\n")
}

func orDefaultString(v string, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
