package gen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cubicool/cubicle/internal/world"
	"google.golang.org/genai"
)

const (
	// defaultTextModel is the model used for all structured text
	// generation.
	defaultTextModel = "gemini-2.5-flash"

	// defaultImageModel is the model used for image attachments.
	defaultImageModel = "imagen-3.0-generate-002"
)

// GeminiConfig holds the settings for the Gemini-backed gateway.
type GeminiConfig struct {
	// APIKey authenticates against the Gemini API.
	APIKey string

	// TextModel overrides the structured-output text model.
	TextModel string

	// ImageModel overrides the image generation model.
	ImageModel string
}

// DefaultGeminiConfig returns the standard model selection.
func DefaultGeminiConfig() GeminiConfig {
	return GeminiConfig{
		TextModel:  defaultTextModel,
		ImageModel: defaultImageModel,
	}
}

// GeminiGateway implements Gateway on top of the Gemini API with structured
// JSON response schemas.
type GeminiGateway struct {
	cfg    GeminiConfig
	client *genai.Client
}

// NewGeminiGateway creates a gateway using the given config.
func NewGeminiGateway(ctx context.Context,
	cfg GeminiConfig,
) (*GeminiGateway, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.TextModel == "" {
		cfg.TextModel = defaultTextModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = defaultImageModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiGateway{
		cfg:    cfg,
		client: client,
	}, nil
}

// wireAction is the JSON shape of a side action in model output.
type wireAction struct {
	Type    string `json:"type"`
	Payload struct {
		To          []string `json:"to,omitempty"`
		Cc          []string `json:"cc,omitempty"`
		Subject     string   `json:"subject,omitempty"`
		Body        string   `json:"body,omitempty"`
		Title       string   `json:"title,omitempty"`
		Description string   `json:"description,omitempty"`
		Start       string   `json:"start,omitempty"`
		End         string   `json:"end,omitempty"`
		AllDay      bool     `json:"allDay,omitempty"`
		IsSystem    bool     `json:"isSystem,omitempty"`
		ProjectID   string   `json:"projectId,omitempty"`
		TaskDetails *struct {
			Description         string `json:"description"`
			AssigneeEmail       string `json:"assigneeEmail"`
			CompletionRecipient string `json:"completionRecipientEmail"`
		} `json:"taskDetails,omitempty"`
	} `json:"payload"`
}

// wireEmail is the JSON shape of an email generation response.
type wireEmail struct {
	Subject     string      `json:"subject"`
	Body        string      `json:"body"`
	Signature   string      `json:"signature,omitempty"`
	Action      *wireAction `json:"action,omitempty"`
	ImagePrompt string      `json:"imagePrompt,omitempty"`
}

// wireIM is the JSON shape of an IM reply response.
type wireIM struct {
	Text   string      `json:"text"`
	Action *wireAction `json:"action,omitempty"`
}

// decodeAction converts a wire action into the typed SideAction union.
// Unknown action types are dropped rather than failing the whole result.
func decodeAction(w *wireAction) SideAction {
	if w == nil {
		return nil
	}

	switch w.Type {
	case "SEND_EMAIL":
		if len(w.Payload.To) == 0 {
			return nil
		}
		return SendEmailAction{
			To:      w.Payload.To,
			Cc:      w.Payload.Cc,
			Subject: w.Payload.Subject,
			Body:    w.Payload.Body,
		}

	case "CREATE_EVENT":
		start, err := time.Parse(time.RFC3339, w.Payload.Start)
		if err != nil {
			return nil
		}
		end, err := time.Parse(time.RFC3339, w.Payload.End)
		if err != nil {
			return nil
		}

		action := CreateEventAction{
			Title:       w.Payload.Title,
			Description: w.Payload.Description,
			Start:       start,
			End:         end,
			AllDay:      w.Payload.AllDay,
			IsSystem:    w.Payload.IsSystem,
			ProjectID:   w.Payload.ProjectID,
		}
		if td := w.Payload.TaskDetails; td != nil {
			action.TaskDetails = &world.TaskDetails{
				Description:         td.Description,
				AssigneeEmail:       td.AssigneeEmail,
				CompletionRecipient: td.CompletionRecipient,
			}
		}

		return action

	default:
		return nil
	}
}

// describeParticipant renders one actor for prompt context.
func describeParticipant(p Participant) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s <%s>", p.Name, p.Email)
	if p.Role != "" {
		fmt.Fprintf(&b, ", %s", p.Role)
	}
	if p.Department != "" {
		fmt.Fprintf(&b, " (%s)", p.Department)
	}
	if p.Personality != "" {
		fmt.Fprintf(&b, " | personality: %s", p.Personality)
	}

	return b.String()
}

// renderEmailHistory flattens prior emails for prompt context, oldest first.
func renderEmailHistory(history []world.Email) string {
	if len(history) == 0 {
		return "(new conversation)"
	}

	var b strings.Builder
	for _, e := range history {
		fmt.Fprintf(&b, "From: %s\nSubject: %s\n%s\n---\n",
			e.From, e.Subject, e.Body)
	}

	return b.String()
}

func buildEmailPrompt(req EmailRequest) string {
	var b strings.Builder

	b.WriteString("You are writing a workplace email in character.\n\n")
	fmt.Fprintf(&b, "Sender: %s\n", describeParticipant(req.Sender))

	b.WriteString("Recipients:\n")
	for _, r := range req.Recipients {
		fmt.Fprintf(&b, "  - %s\n", describeParticipant(r))
	}
	for _, r := range req.Cc {
		fmt.Fprintf(&b, "  - (cc) %s\n", describeParticipant(r))
	}

	fmt.Fprintf(&b, "\nConversation so far:\n%s\n",
		renderEmailHistory(req.History))

	if req.Instructions != "" {
		fmt.Fprintf(&b, "\nTask: %s\n", req.Instructions)
	}
	if req.HighEngagement {
		b.WriteString("\nWrite a longer, more detailed email than " +
			"usual; this is an involved discussion.\n")
	}

	return b.String()
}

// actionSchema describes the optional side-action object.
func actionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"type": {
				Type: genai.TypeString,
				Enum: []string{"SEND_EMAIL", "CREATE_EVENT"},
			},
			"payload": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"to": {
						Type: genai.TypeArray,
						Items: &genai.Schema{
							Type: genai.TypeString,
						},
					},
					"cc": {
						Type: genai.TypeArray,
						Items: &genai.Schema{
							Type: genai.TypeString,
						},
					},
					"subject":     {Type: genai.TypeString},
					"body":        {Type: genai.TypeString},
					"title":       {Type: genai.TypeString},
					"description": {Type: genai.TypeString},
					"start":       {Type: genai.TypeString},
					"end":         {Type: genai.TypeString},
					"allDay":      {Type: genai.TypeBoolean},
					"isSystem":    {Type: genai.TypeBoolean},
					"projectId":   {Type: genai.TypeString},
				},
			},
		},
		Required: []string{"type", "payload"},
	}
}

func emailSchema(allowAction, allowImage bool) *genai.Schema {
	props := map[string]*genai.Schema{
		"subject":   {Type: genai.TypeString},
		"body":      {Type: genai.TypeString},
		"signature": {Type: genai.TypeString},
	}
	if allowAction {
		props["action"] = actionSchema()
	}
	if allowImage {
		props["imagePrompt"] = &genai.Schema{Type: genai.TypeString}
	}

	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: props,
		Required:   []string{"subject", "body"},
	}
}

// generateJSON runs a structured-output generation and unmarshals the JSON
// response into out.
func (g *GeminiGateway) generateJSON(ctx context.Context, prompt string,
	schema *genai.Schema, out any,
) error {
	resp, err := g.client.Models.GenerateContent(
		ctx, g.cfg.TextModel, genai.Text(prompt),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		},
	)
	if err != nil {
		return fmt.Errorf("generate content: %w", err)
	}

	raw := resp.Text()
	if raw == "" {
		return fmt.Errorf("empty generation response")
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("parse generation response: %w", err)
	}

	return nil
}

// GenerateEmail produces an email, optionally with a side action and image
// prompt.
func (g *GeminiGateway) GenerateEmail(ctx context.Context,
	req EmailRequest,
) (*EmailResult, error) {
	var wire wireEmail
	err := g.generateJSON(
		ctx, buildEmailPrompt(req),
		emailSchema(req.AllowAction, req.AllowImage), &wire,
	)
	if err != nil {
		return nil, err
	}

	log.DebugS(ctx, "Generated email",
		"sender", req.Sender.Email,
		"subject", wire.Subject,
		"has_action", wire.Action != nil,
		"has_image_prompt", wire.ImagePrompt != "")

	return &EmailResult{
		Subject:     wire.Subject,
		Body:        wire.Body,
		Signature:   wire.Signature,
		Action:      decodeAction(wire.Action),
		ImagePrompt: wire.ImagePrompt,
	}, nil
}

// GenerateIMReply produces an instant-message reply.
func (g *GeminiGateway) GenerateIMReply(ctx context.Context,
	req IMRequest,
) (*IMResult, error) {
	var b strings.Builder
	b.WriteString("You are replying in a workplace instant-message " +
		"chat, in character. Keep it short and conversational.\n\n")
	fmt.Fprintf(&b, "You are: %s\n", describeParticipant(req.Sender))
	b.WriteString("Chat participants:\n")
	for _, p := range req.Participants {
		fmt.Fprintf(&b, "  - %s\n", describeParticipant(p))
	}
	b.WriteString("\nRecent messages:\n")
	for _, m := range req.History {
		fmt.Fprintf(&b, "%s: %s\n", m.SenderEmail, m.Content)
	}
	if req.Instructions != "" {
		fmt.Fprintf(&b, "\n%s\n", req.Instructions)
	}

	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"text":   {Type: genai.TypeString},
			"action": actionSchema(),
		},
		Required: []string{"text"},
	}

	var wire wireIM
	if err := g.generateJSON(ctx, b.String(), schema, &wire); err != nil {
		return nil, err
	}

	return &IMResult{
		Text:   wire.Text,
		Action: decodeAction(wire.Action),
	}, nil
}

// GenerateText produces a short plain-text piece of content.
func (g *GeminiGateway) GenerateText(ctx context.Context,
	req TextRequest,
) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "You are: %s\n", describeParticipant(req.Author))
	if req.Context != "" {
		fmt.Fprintf(&b, "\nContext:\n%s\n", req.Context)
	}
	fmt.Fprintf(&b, "\n%s\n", req.Instructions)

	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"content": {Type: genai.TypeString},
		},
		Required: []string{"content"},
	}

	var wire struct {
		Content string `json:"content"`
	}
	if err := g.generateJSON(ctx, b.String(), schema, &wire); err != nil {
		return "", err
	}

	return wire.Content, nil
}

// GenerateCoworker proposes a new persona for the directory.
func (g *GeminiGateway) GenerateCoworker(ctx context.Context,
	existing []Participant,
) (*CoworkerProposal, error) {
	var b strings.Builder
	b.WriteString("Invent a new coworker for this company directory. " +
		"The email must use the same domain as the others and must " +
		"not collide with an existing address.\n\nExisting staff:\n")
	for _, p := range existing {
		fmt.Fprintf(&b, "  - %s\n", describeParticipant(p))
	}

	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":        {Type: genai.TypeString},
			"email":       {Type: genai.TypeString},
			"personality": {Type: genai.TypeString},
			"age":         {Type: genai.TypeInteger},
			"signature":   {Type: genai.TypeString},
			"role":        {Type: genai.TypeString},
			"department":  {Type: genai.TypeString},
			"reportsTo":   {Type: genai.TypeString},
		},
		Required: []string{
			"name", "email", "personality", "age", "role",
			"department",
		},
	}

	var wire struct {
		Name        string `json:"name"`
		Email       string `json:"email"`
		Personality string `json:"personality"`
		Age         int    `json:"age"`
		Signature   string `json:"signature"`
		Role        string `json:"role"`
		Department  string `json:"department"`
		ReportsTo   string `json:"reportsTo"`
	}
	if err := g.generateJSON(ctx, b.String(), schema, &wire); err != nil {
		return nil, err
	}

	return &CoworkerProposal{
		Name:        wire.Name,
		Email:       wire.Email,
		Personality: wire.Personality,
		Age:         wire.Age,
		Signature:   wire.Signature,
		Role:        wire.Role,
		Department:  wire.Department,
		ReportsTo:   wire.ReportsTo,
	}, nil
}

// GenerateProject proposes a new project over the given candidate members.
func (g *GeminiGateway) GenerateProject(ctx context.Context,
	candidates []Participant,
) (*ProjectProposal, error) {
	var b strings.Builder
	b.WriteString("Invent a plausible internal project for this " +
		"company and pick 2-4 members from the staff below. Use " +
		"their exact email addresses.\n\nStaff:\n")
	for _, p := range candidates {
		fmt.Fprintf(&b, "  - %s\n", describeParticipant(p))
	}

	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":  {Type: genai.TypeString},
			"brief": {Type: genai.TypeString},
			"memberEmails": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeString,
				},
			},
		},
		Required: []string{"name", "brief", "memberEmails"},
	}

	var wire struct {
		Name         string   `json:"name"`
		Brief        string   `json:"brief"`
		MemberEmails []string `json:"memberEmails"`
	}
	if err := g.generateJSON(ctx, b.String(), schema, &wire); err != nil {
		return nil, err
	}

	return &ProjectProposal{
		Name:         wire.Name,
		Brief:        wire.Brief,
		MemberEmails: wire.MemberEmails,
	}, nil
}

// GenerateEvent proposes a new calendar event.
func (g *GeminiGateway) GenerateEvent(ctx context.Context,
	theme string,
) (*EventProposal, error) {
	prompt := "Invent a plausible company calendar event."
	if theme != "" {
		prompt = fmt.Sprintf("%s Theme: %s", prompt, theme)
	}

	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":       {Type: genai.TypeString},
			"description": {Type: genai.TypeString},
			"allDay":      {Type: genai.TypeBoolean},
		},
		Required: []string{"title", "description", "allDay"},
	}

	var wire struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		AllDay      bool   `json:"allDay"`
	}
	if err := g.generateJSON(ctx, prompt, schema, &wire); err != nil {
		return nil, err
	}

	return &EventProposal{
		Title:       wire.Title,
		Description: wire.Description,
		AllDay:      wire.AllDay,
	}, nil
}

// GenerateImage resolves a text prompt into a base64-encoded image payload.
func (g *GeminiGateway) GenerateImage(ctx context.Context,
	prompt string,
) (string, error) {
	resp, err := g.client.Models.GenerateImages(
		ctx, g.cfg.ImageModel, prompt,
		&genai.GenerateImagesConfig{
			NumberOfImages: 1,
		},
	)
	if err != nil {
		return "", fmt.Errorf("generate image: %w", err)
	}
	if len(resp.GeneratedImages) == 0 ||
		resp.GeneratedImages[0].Image == nil {

		return "", fmt.Errorf("no image returned")
	}

	data := resp.GeneratedImages[0].Image.ImageBytes

	return base64.StdEncoding.EncodeToString(data), nil
}

// Compile-time check that GeminiGateway implements Gateway.
var _ Gateway = (*GeminiGateway)(nil)
