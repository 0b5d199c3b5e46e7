package services

import "github.com/sirupsen/logrus"

// Routing keys of the domain events the services emit.
const (
	EventUserCreated    = "user.created"
	EventUserDeleted    = "user.deleted"
	EventPostCreated    = "post.created"
	EventPostDeleted    = "post.deleted"
	EventCommentCreated = "comment.created"
	EventCommentLiked   = "comment.liked"
)

// EventPublisher sends a domain event to the message broker.
type EventPublisher interface {
	Publish(routingKey string, payload map[string]interface{}) error
}

// publish is best effort: the write has already been committed, so a broker
// failure is logged and never returned to the caller.
func publish(log logrus.FieldLogger, events EventPublisher, routingKey string, payload map[string]interface{}) {
	if events == nil {
		return
	}
	if err := events.Publish(routingKey, payload); err != nil {
		log.WithError(err).WithField("event", routingKey).Warn("failed to publish domain event")
	}
}
