package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Study content is browsed as a feed of pages grouped into subtopics and
// topics. The quiz service only tracks reading position; the content itself
// is authored elsewhere.

type StudyPage struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type SubTopic struct {
	ID    string      `json:"id"`
	Title string      `json:"title"`
	Pages []StudyPage `json:"pages"`
}

type Topic struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Subtopics []SubTopic `json:"subtopics"`
}

// StudyProgress maps subtopic id to the last page index the reader reached.
type StudyProgress map[string]int

// TopicRecord is the persisted form of a topic. Subtopics and their pages are
// stored as a single JSONB document.
type TopicRecord struct {
	ID        string         `json:"id" gorm:"primaryKey;size:64"`
	Title     string         `json:"title" gorm:"not null;size:255"`
	Subtopics datatypes.JSON `json:"subtopics" gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (TopicRecord) TableName() string {
	return "topics"
}

// ToTopic expands the JSONB document into a Topic.
func (r *TopicRecord) ToTopic() (*Topic, error) {
	topic := &Topic{ID: r.ID, Title: r.Title}
	if err := json.Unmarshal(r.Subtopics, &topic.Subtopics); err != nil {
		return nil, fmt.Errorf("failed to decode topic subtopics: %w", err)
	}
	return topic, nil
}

// NewTopicRecord collapses a Topic into its persisted form.
func NewTopicRecord(topic *Topic) (*TopicRecord, error) {
	data, err := json.Marshal(topic.Subtopics)
	if err != nil {
		return nil, fmt.Errorf("failed to encode topic subtopics: %w", err)
	}
	return &TopicRecord{ID: topic.ID, Title: topic.Title, Subtopics: data}, nil
}
