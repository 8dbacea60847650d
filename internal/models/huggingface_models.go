package models

// TextGenerationRequest is the Hugging Face text-generation inference payload.
type TextGenerationRequest struct {
	Inputs     string                   `json:"inputs"`
	Parameters TextGenerationParameters `json:"parameters"`
}

type TextGenerationParameters struct {
	MaxNewTokens   int  `json:"max_new_tokens"`
	ReturnFullText bool `json:"return_full_text"`
}

type TextGenerationResponse struct {
	GeneratedText string `json:"generated_text"`
}

type (
	TextGenerationBatchResponse []TextGenerationResponse
)
