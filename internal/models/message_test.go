package models_test

import (
	"testing"

	"groupchat/backend/internal/models"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestGroupMessage_HasContent(t *testing.T) {
	tests := []struct {
		name string
		msg  models.GroupMessage
		want bool
	}{
		{"text only", models.GroupMessage{Body: "hello"}, true},
		{"file only", models.GroupMessage{FileName: "notes.pdf"}, true},
		{"text and file", models.GroupMessage{Body: "see attached", FileName: "notes.pdf"}, true},
		{"neither", models.GroupMessage{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.msg.HasContent())
		})
	}
}

func TestGroupMessage_DisplayText(t *testing.T) {
	withBody := models.GroupMessage{Body: "hello", FileName: "notes.pdf"}
	assert.Equal(t, "hello", withBody.DisplayText(), "body wins over the file placeholder")

	fileOnly := models.GroupMessage{FileName: "notes.pdf"}
	assert.Equal(t, "Shared a file: notes.pdf", fileOnly.DisplayText())

	empty := models.GroupMessage{}
	assert.Equal(t, "", empty.DisplayText())
}

func TestGroupMessage_ReceiptSets(t *testing.T) {
	msg := models.GroupMessage{
		SeenBy:      pq.StringArray{"alice"},
		DeliveredTo: pq.StringArray{"alice", "bob"},
	}

	assert.True(t, msg.SeenByUser("alice"))
	assert.False(t, msg.SeenByUser("bob"))
	assert.True(t, msg.DeliveredToUser("bob"))
	assert.False(t, msg.DeliveredToUser("carol"))
}

func TestChatGroup_Membership(t *testing.T) {
	dm := models.ChatGroup{
		IsPrivate: true,
		Members:   pq.StringArray{"alice", "bob"},
	}

	assert.True(t, dm.HasMember("alice"))
	assert.False(t, dm.HasMember("carol"))
	assert.Equal(t, "bob", dm.OtherMember("alice"))
	assert.Equal(t, "alice", dm.OtherMember("bob"))

	group := models.ChatGroup{Members: pq.StringArray{"alice", "bob"}}
	assert.Equal(t, "", group.OtherMember("alice"), "only private rooms have an other member")
}
