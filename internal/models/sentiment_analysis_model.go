package models

import "time"

type SentimentAnalysisRequest struct {
	Sentence string `json:"sentence"`
}

// SentimentAnalysisResponse carries an empty Sentiment when the model output
// could not be read as a label.
type SentimentAnalysisResponse struct {
	Sentiment string `json:"sentiment"`
}

// SentimentAnalysisResult is published to the results topic after a fresh
// classification.
type SentimentAnalysisResult struct {
	Sentence       string    `json:"sentence"`
	SentimentLabel string    `json:"sentiment_label"`
	Provider       string    `json:"provider"`
	AnalyzedAt     time.Time `json:"analyzed_at"`
}
