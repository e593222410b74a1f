package rest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kingsrook/qqq-client/model"
)

// ProcessScript is the scripted behavior of one process. Init and Steps are returned as
// is; Status lists the successive answers for a job, the last one repeating.
type ProcessScript struct {
	Init    map[string]any              `json:"init"`
	Steps   map[string]map[string]any   `json:"steps,omitempty"`
	Status  map[string][]map[string]any `json:"status,omitempty"`
	Records []map[string]any            `json:"records,omitempty"`
}

// Fixture is everything the mock backend serves.
type Fixture struct {
	MetaData       *model.Instance             `json:"metaData"`
	Authentication map[string]any              `json:"authentication,omitempty"`
	Processes      map[string]*ProcessScript   `json:"processes,omitempty"`
	Records        map[string][]map[string]any `json:"records,omitempty"`
}

func LoadFixture(fileName string) (*Fixture, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	var fixture Fixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("fixture %s: %w", fileName, err)
	}
	return &fixture, nil
}

func (f *Fixture) primaryKeyField(tableName string) string {
	if f.MetaData != nil {
		if table, ok := f.MetaData.Tables[tableName]; ok && table.PrimaryKeyField != "" {
			return table.PrimaryKeyField
		}
	}
	return "id"
}
