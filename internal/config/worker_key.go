package config

type WorkerKeyStruct struct {
	EmailOutboxQueue string
}

var WorkerKey = &WorkerKeyStruct{
	EmailOutboxQueue: "email_outbox_queue",
}
