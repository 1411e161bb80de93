package ai_bot

import "context"

type AIBotAPI interface {
	// Respond answers command, using input as the transcribed context.
	Respond(ctx context.Context, command string, input string) (string, error)
}
