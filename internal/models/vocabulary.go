package models

// VocabularyItem is a read-only catalog entry.
type VocabularyItem struct {
	ID             int64  `json:"id"`
	SourceText     string `json:"source_text"`
	TargetText     string `json:"target_text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	Phonetic       string `json:"phonetic"`
	DifficultyTier *int   `json:"difficulty_tier,omitempty"`
}

// Scope restricts the catalog for a review session. WordIDs takes precedence
// over DifficultyTier; an empty scope means the whole catalog.
type Scope struct {
	DifficultyTier *int    `json:"difficulty_tier,omitempty"`
	WordIDs        []int64 `json:"word_ids,omitempty"`
}

func (s Scope) IsExplicit() bool {
	return len(s.WordIDs) > 0
}
