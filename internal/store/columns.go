package store

import (
	"encoding/json"

	"github.com/saransh000/hackathonpractice/internal/models"
)

// Column layouts are stored as a single JSON document per board, mirroring
// how the board is consumed: the layout is always read and replaced whole.

func encodeColumns(columns []models.Column) (string, error) {
	if columns == nil {
		columns = []models.Column{}
	}
	data, err := json.Marshal(columns)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeColumns(data string) ([]models.Column, error) {
	if data == "" {
		return []models.Column{}, nil
	}
	var columns []models.Column
	if err := json.Unmarshal([]byte(data), &columns); err != nil {
		return nil, err
	}
	return columns, nil
}
