package config

import "fmt"

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AttemptAnswersKey returns the cache key holding a student's autosaved
// selections for one attempt (hash of question_id → option text).
func (r *CacheKeyStruct) AttemptAnswersKey(examID, userID string) string {
	return fmt.Sprintf("user:%s:exam:%s:answers", userID, examID)
}

// AttemptStartKey returns the cache key holding the unix start time of a
// student's attempt, used to recompute remaining seconds on resume.
func (r *CacheKeyStruct) AttemptStartKey(examID, userID string) string {
	return fmt.Sprintf("user:%s:exam:%s:started_at", userID, examID)
}

// AttemptSubmittedKey marks an attempt as already submitted so a resumed
// session cannot re-open it.
func (r *CacheKeyStruct) AttemptSubmittedKey(examID, userID string) string {
	return fmt.Sprintf("user:%s:exam:%s:submitted", userID, examID)
}

var CacheKey = NewCacheKeyStruct()
