package config

type WorkerKeyStruct struct {
	PersistAnswersQueue   string
	RetrySubmissionsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistAnswersQueue:   "persist_answers_queue",
	RetrySubmissionsQueue: "retry_submissions_queue",
}
