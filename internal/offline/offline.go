// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package offline holds the canned guidance used when the model server is
// unreachable. The chat must keep answering without Ollama, so every send
// that cannot reach the server falls back to one of these responses.
package offline

import "math/rand"

// Responses are the fallback replies served while offline. One is picked
// at random per send so repeated offline turns do not read identically.
var Responses = []string{
	"I'm currently offline, but I can still provide some general career guidance. Could you tell me more about your interests and skills? When I'm back online, I'll be able to give you more detailed and personalized advice.",
	"While I'm in offline mode, I can suggest exploring your interests through online resources, speaking with professionals in fields that interest you, and considering your natural strengths. What subjects or activities do you enjoy most?",
	"I'm working in offline mode right now. In the meantime, I recommend researching career assessments, talking to career counselors at your school, and exploring internship opportunities. What specific career areas are you curious about?",
}

// ConnectionFailureMessage is shown when a send fails outright rather than
// degrading to an offline response, e.g. when the request was cancelled.
const ConnectionFailureMessage = "I'm sorry, I'm having trouble connecting right now. Please check if Ollama is running on your system or try again when you're back online."

// Pick returns one of the offline responses at random.
func Pick() string {
	return Responses[rand.Intn(len(Responses))]
}
