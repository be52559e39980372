package log

// Component names used across the application
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStore   = "store"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentMirror  = "mirror"
	ComponentInsight = "insight"
	ComponentBackend = "backend"
)

// Common structured logging field names
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldDataset   = "dataset"
	FieldCount     = "count"
	FieldLevel     = "level"
	FieldBackend   = "backend"
	FieldPort      = "port"
	FieldPath      = "path"
	FieldDuration  = "duration"
)
