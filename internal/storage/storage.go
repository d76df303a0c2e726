// Package storage keeps per-guild bot state in the JSON datastore: command
// usage history, played track history, and the registered slash command
// hashes used to skip redundant re-registration.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"bassline/datastore"
)

const (
	commandHistoryLimit = 20
	trackHistoryLimit   = 12
)

type Storage struct {
	ds *datastore.DataStore
}

type CommandHistoryRecord struct {
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Param     string    `json:"param"`
	Datetime  time.Time `json:"datetime"`
}

type TrackHistoryRecord struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	RequestedBy string    `json:"requested_by"`
	PlayedAt    time.Time `json:"played_at"`
}

type Record struct {
	CommandsHistory []CommandHistoryRecord `json:"cmd_history"`
	TracksHistory   []TrackHistoryRecord   `json:"track_history"`
	CommandHashes   map[string]string      `json:"command_hashes"` // command name -> definition hash
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// getOrCreateGuildRecord loads the guild record, creating an empty one on
// first use. Stored values come back as map[string]any after a reload, so
// they go through a JSON round-trip.
func (s *Storage) getOrCreateGuildRecord(guildID string) (*Record, error) {
	data, exists := s.ds.Get(guildID)
	if !exists {
		record := &Record{CommandHashes: map[string]string{}}
		s.ds.Add(guildID, record)
		return record, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error marshalling data: %w", err)
	}

	var record Record
	if err := json.Unmarshal(jsonData, &record); err != nil {
		return nil, fmt.Errorf("error unmarshalling to *Record: %w", err)
	}

	if record.CommandHashes == nil {
		record.CommandHashes = map[string]string{}
	}
	if len(record.CommandsHistory) > commandHistoryLimit {
		record.CommandsHistory = record.CommandsHistory[len(record.CommandsHistory)-commandHistoryLimit:]
	}
	if len(record.TracksHistory) > trackHistoryLimit {
		record.TracksHistory = record.TracksHistory[len(record.TracksHistory)-trackHistoryLimit:]
	}

	return &record, nil
}

// AppendCommandToHistory records a command invocation for a guild.
func (s *Storage) AppendCommandToHistory(guildID string, cmd CommandHistoryRecord) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	record.CommandsHistory = append(record.CommandsHistory, cmd)
	if len(record.CommandsHistory) > commandHistoryLimit {
		record.CommandsHistory = record.CommandsHistory[len(record.CommandsHistory)-commandHistoryLimit:]
	}
	s.ds.Add(guildID, record)
	return nil
}

func (s *Storage) FetchCommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandsHistory, nil
}

// AppendTrackToHistory records a played track for a guild.
func (s *Storage) AppendTrackToHistory(guildID string, track TrackHistoryRecord) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	record.TracksHistory = append(record.TracksHistory, track)
	if len(record.TracksHistory) > trackHistoryLimit {
		record.TracksHistory = record.TracksHistory[len(record.TracksHistory)-trackHistoryLimit:]
	}
	s.ds.Add(guildID, record)
	return nil
}

func (s *Storage) FetchTrackHistory(guildID string) ([]TrackHistoryRecord, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.TracksHistory, nil
}

// GetCommandHashes returns the stored slash command definition hashes.
func (s *Storage) GetCommandHashes(guildID string) (map[string]string, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandHashes, nil
}

// SetCommandHashes replaces the stored slash command definition hashes.
func (s *Storage) SetCommandHashes(guildID string, hashes map[string]string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	record.CommandHashes = hashes
	s.ds.Add(guildID, record)
	return nil
}
