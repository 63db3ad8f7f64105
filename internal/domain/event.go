package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventName enumerates the domain events published to the bus.
type EventName string

const (
	EventInvitationCreated   EventName = "rosterdesk.invitation.created"
	EventInvitationAccepted  EventName = "rosterdesk.invitation.accepted"
	EventInvitationRevoked   EventName = "rosterdesk.invitation.revoked"
	EventContractCreated     EventName = "rosterdesk.contract.created"
	EventOrganizationCreated EventName = "rosterdesk.organization.created"
)

// AggregateType enumerates the aggregate root types for published events.
type AggregateType string

const (
	AggregateOrganization AggregateType = "organization"
	AggregateInvitation   AggregateType = "invitation"
	AggregateContract     AggregateType = "contract"
)

// EventEnvelope is the message written to the event bus. PartitionKey is the
// organization ID so one tenant's events stay ordered.
type EventEnvelope struct {
	EventID       uuid.UUID       `json:"eventId"`
	AggregateType AggregateType   `json:"aggregateType"`
	AggregateID   string          `json:"aggregateId"`
	EventName     EventName       `json:"eventType"`
	PartitionKey  string          `json:"partitionKey"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

// InvitationCreatedPayload carries what the notifier needs to send the invite email.
type InvitationCreatedPayload struct {
	InvitationID string    `json:"invitation_id"`
	OrgID        string    `json:"org_id"`
	OrgName      string    `json:"org_name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	Token        string    `json:"token"`
	InvitedBy    string    `json:"invited_by"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// NewInvitationCreatedEvent builds the envelope announcing a new invitation.
func NewInvitationCreatedEvent(inv *Invitation, orgName string, at time.Time) EventEnvelope {
	payload, _ := json.Marshal(InvitationCreatedPayload{
		InvitationID: inv.ID,
		OrgID:        inv.OrgID,
		OrgName:      orgName,
		Email:        inv.Email,
		Role:         inv.Role,
		Token:        inv.Token,
		InvitedBy:    inv.InvitedBy,
		ExpiresAt:    inv.ExpiresAt,
	})
	return newEnvelope(AggregateInvitation, inv.ID, EventInvitationCreated, inv.OrgID, payload, at)
}

// NewInvitationAcceptedEvent builds the envelope announcing a consumed invitation.
func NewInvitationAcceptedEvent(inv *Invitation, userID string, at time.Time) EventEnvelope {
	payload, _ := json.Marshal(map[string]interface{}{
		"invitation_id": inv.ID,
		"org_id":        inv.OrgID,
		"user_id":       userID,
		"role":          inv.Role,
	})
	return newEnvelope(AggregateInvitation, inv.ID, EventInvitationAccepted, inv.OrgID, payload, at)
}

// NewInvitationRevokedEvent builds the envelope announcing a revoked invitation.
func NewInvitationRevokedEvent(orgID, invitationID string, at time.Time) EventEnvelope {
	payload, _ := json.Marshal(map[string]interface{}{
		"invitation_id": invitationID,
		"org_id":        orgID,
	})
	return newEnvelope(AggregateInvitation, invitationID, EventInvitationRevoked, orgID, payload, at)
}

// NewContractCreatedEvent builds the envelope announcing a new contract.
func NewContractCreatedEvent(c *Contract, at time.Time) EventEnvelope {
	payload, _ := json.Marshal(map[string]interface{}{
		"contract_id": c.ID,
		"org_id":      c.OrgID,
		"athlete_id":  c.AthleteID,
		"value":       c.Value,
		"type":        c.Type,
	})
	return newEnvelope(AggregateContract, c.ID, EventContractCreated, c.OrgID, payload, at)
}

// NewOrganizationCreatedEvent builds the envelope announcing a new organization.
func NewOrganizationCreatedEvent(org *Organization, ownerID string, at time.Time) EventEnvelope {
	payload, _ := json.Marshal(map[string]interface{}{
		"org_id":   org.ID,
		"name":     org.Name,
		"owner_id": ownerID,
	})
	return newEnvelope(AggregateOrganization, org.ID, EventOrganizationCreated, org.ID, payload, at)
}

func newEnvelope(agg AggregateType, aggID string, name EventName, orgID string, payload json.RawMessage, at time.Time) EventEnvelope {
	return EventEnvelope{
		EventID:       uuid.New(),
		AggregateType: agg,
		AggregateID:   aggID,
		EventName:     name,
		PartitionKey:  orgID,
		Payload:       payload,
		OccurredAt:    at,
	}
}
