// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package guide

import (
	"context"
	"strings"

	"github.com/dishalabs/disha-tui/internal/offline"
)

// =============================================================================
// PERSONA
// =============================================================================

// systemPersona frames every model request. The model is instructed to
// answer in the language of the question, which is what makes the
// multilingual chat work without per-language prompts.
const systemPersona = `You are an expert career guidance counselor. Your role is to provide personalized, actionable career advice to students.

Guidelines:
- Provide specific, practical advice tailored to the student's interests and skills
- Suggest relevant career paths, educational requirements, and next steps
- Be encouraging and supportive while being realistic
- Ask clarifying questions to better understand their situation
- Include information about emerging career opportunities
- Consider both traditional and modern career paths
- Respond in the same language as the student's question`

// =============================================================================
// MODEL CLIENT INTERFACE
// =============================================================================

// ModelClient is the slice of the Ollama client the Advisor needs.
type ModelClient interface {
	// CheckReachable reports whether the model server answers its probe.
	CheckReachable(ctx context.Context) bool
	// Generate runs a non-streaming completion for the given prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}

// =============================================================================
// ADVISOR
// =============================================================================

// Advisor produces career-guidance responses, online or offline.
type Advisor struct {
	client ModelClient
}

// NewAdvisor creates an Advisor backed by the given model client.
func NewAdvisor(client ModelClient) *Advisor {
	return &Advisor{client: client}
}

// BuildPrompt assembles the full model prompt from the persona, the
// trailing conversation context, and the student's question.
func BuildPrompt(question, convContext string) string {
	var b strings.Builder
	b.WriteString(systemPersona)
	b.WriteString("\n\n")
	if convContext != "" {
		b.WriteString("Previous conversation context: ")
		b.WriteString(convContext)
		b.WriteString("\n\n")
	}
	b.WriteString("Student's question: ")
	b.WriteString(question)
	return b.String()
}

// Respond answers the student's question. The degradation ladder:
//
//  1. Server unreachable: canned offline response, no request sent.
//  2. Request fails but the caller's context is still live: canned
//     offline response.
//  3. Caller's context cancelled: the error is returned so the caller
//     can report the failure instead of pretending an answer arrived.
func (a *Advisor) Respond(ctx context.Context, question, convContext string) (string, error) {
	if !a.client.CheckReachable(ctx) {
		return offline.Pick(), nil
	}

	response, err := a.client.Generate(ctx, BuildPrompt(question, convContext))
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return offline.Pick(), nil
	}
	return response, nil
}
