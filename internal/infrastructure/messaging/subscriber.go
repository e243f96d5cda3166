package messaging

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// NewSubscriber returns the GoChannel as a Watermill Subscriber.
func NewSubscriber(goChannel *gochannel.GoChannel) message.Subscriber {
	return goChannel
}
