package amqp

import (
	"encoding/json"
	"time"
)

// Dataset names carried by sync messages.
const (
	DatasetBudgetLines  = "budget_lines"
	DatasetRealizations = "realizations"
	DatasetCategories   = "categories"
)

// DatasetSyncMessage tells the worker that a dataset changed. It carries only
// the dataset name and row count; the worker reloads the data from the local
// store before mirroring.
type DatasetSyncMessage struct {
	Dataset   string    `json:"dataset"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

func NewDatasetSyncMessage(dataset string, count int) *DatasetSyncMessage {
	return &DatasetSyncMessage{
		Dataset:   dataset,
		Count:     count,
		Timestamp: time.Now(),
	}
}

func (m *DatasetSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func DatasetSyncMessageFromJSON(data []byte) (*DatasetSyncMessage, error) {
	var msg DatasetSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
