// Package assistant wraps the chat-completion provider behind a small
// synchronous client. Each request is independent: no retries, no streaming,
// no conversation memory.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const systemPrompt = "You are a helpful assistant in a ToDo application. Your role is to provide tips, advice, " +
	"and suggestions related to tasks that a user might add to their to-do list. " +
	"When a user provides a task title and description, " +
	"you will offer useful guidance or recommendations that might help the user in completing that task.\n\n" +
	"For example, if the user adds a task like \"Buy groceries\", " +
	"you might suggest helpful steps like \"Create a shopping list\" or \"Check for discounts at local stores\". " +
	"If the task is more complex, " +
	"you might provide additional tips such as \"Break it down into smaller steps\" or \"Set a deadline for each step\".\n\n" +
	"If the query is unrelated to the ToDo application, kindly inform the user with a message like " +
	"\"Sorry, I can only assist with tasks related to your to-do list.\" " +
	"If you do not know the answer to a question, reply with " +
	"\"I'm not sure about that, but I can help you with tasks related to your to-do list.\"\n\n" +
	"You should always avoid making up information. If you're unsure, just let the user know that you don't have the answer.\n\n" +
	"Your responses should be helpful, clear, concise, and as brief as possible while still offering value. " +
	"Avoid lengthy explanations. Always encourage the user to keep their tasks organized and stay on track to be more productive."

// Client is bound to one model and one credential. It holds no mutable state,
// so a single value is safe to share across concurrent requests.
type Client struct {
	api     anthropic.Client
	model   string
	timeout time.Duration
}

func New(apiKey, model string, timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return Client{
		api:     anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		timeout: timeout,
	}
}

// Ask performs one chat completion for a task-related question and returns
// the first text block of the response. The call is bounded by the client
// timeout; expiry surfaces as an error for the caller to classify.
func (c Client) Ask(ctx context.Context, title, description, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 512,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMessage(title, description, question))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("assistant completion: %w", err)
	}
	if len(msg.Content) == 0 {
		return "", fmt.Errorf("assistant returned empty response")
	}
	return msg.Content[0].Text, nil
}

func userMessage(title, description, question string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "TaskTitle: %s.", title)
	fmt.Fprintf(&b, " TaskDescription: %s.", description)
	fmt.Fprintf(&b, " User question: %s", question)
	return b.String()
}
