// Package messaging provides Watermill-based event messaging infrastructure
// used to dispatch the §4.4 external metadata enrichment detached from the
// calling request.
package messaging

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// NewGoChannel creates the in-process pub/sub backing enrichment dispatch.
// Enrichment is detached from the request (§4.4, §5) but never leaves the
// process — there is no external broker in scope.
func NewGoChannel(wmLogger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
}

// NewPublisher returns the GoChannel as a Watermill Publisher.
func NewPublisher(goChannel *gochannel.GoChannel) message.Publisher {
	return goChannel
}
