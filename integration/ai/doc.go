// Package ai produces assistant replies for chat messages.
//
// The Responder interface abstracts the model provider; OpenAI and Google
// implementations are included. Both wrap the conversation in a resume
// optimization system prompt, so the assistant stays on task regardless of
// provider:
//
//	responder, err := ai.NewOpenAI(os.Getenv("OPENAI_API_KEY"))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	reply, err := responder.Respond(ctx, history, "rewrite my summary for a staff role")
//
// Switching providers is a constructor swap:
//
//	responder, err := ai.NewGoogle(ctx, os.Getenv("GEMINI_API_KEY"),
//		ai.WithGoogleModel(ai.GoogleGemini15Pro),
//	)
//
// The returned message carries chat.RoleAssistant and is ready to persist
// through the chat store.
package ai
