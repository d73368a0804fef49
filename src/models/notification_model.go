package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Notification struct {
	Id                primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Recipient         primitive.ObjectID `json:"recipient" bson:"recipient"`
	Type              NotificationType   `json:"type" bson:"type"`
	RelatedProfile    primitive.ObjectID `json:"related_profile,omitempty" bson:"related_profile,omitempty"`
	RelatedConnection primitive.ObjectID `json:"related_connection,omitempty" bson:"related_connection,omitempty"`
	Read              bool               `json:"read" bson:"read"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type NotificationType string

const (
	NotificationTypeInquiryReceived  NotificationType = "inquiryReceived"
	NotificationTypeInquiryAccepted  NotificationType = "inquiryAccepted"
	NotificationTypeInquiryDeclined  NotificationType = "inquiryDeclined"
	NotificationTypeCallConfirmed    NotificationType = "callConfirmed"
	NotificationTypeCallCancelled    NotificationType = "callCancelled"
	NotificationTypeTimeProposed     NotificationType = "timeProposed"
	NotificationTypeMessageReceived  NotificationType = "messageReceived"
)
