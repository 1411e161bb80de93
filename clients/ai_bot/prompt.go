package ai_bot

import "fmt"

const promptTemplate = "Your task is to assist user by providing accurate information, solutions, and creative content based input on user request.\n\n" +
	"Request: ```%s```\n\n" +
	"Input: ```%s```\n"

// BuildPrompt combines the spoken command with the transcribed context.
func BuildPrompt(command, input string) string {
	return fmt.Sprintf(promptTemplate, command, input)
}
