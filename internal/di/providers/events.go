package providers

import (
	"github.com/samber/do/v2"

	"github.com/seohyun-lee/bookduck-backend/internal/config"
	"github.com/seohyun-lee/bookduck-backend/internal/events"
	"github.com/seohyun-lee/bookduck-backend/internal/logger"
)

// PublisherHandle wraps the domain event publisher with shutdown capability.
type PublisherHandle struct {
	events.Publisher
}

// Shutdown implements do.Shutdownable.
func (h *PublisherHandle) Shutdown() error {
	return h.Close()
}

// ProvidePublisher provides the AMQP event publisher, or a no-op one when
// no broker is configured.
func ProvidePublisher(i do.Injector) (*PublisherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Events.AMQPURL == "" {
		log.Info("Event publishing disabled: no AMQP broker configured")
		return &PublisherHandle{Publisher: events.Noop{}}, nil
	}

	pub, err := events.NewAMQP(cfg.Events.AMQPURL, cfg.Events.Exchange, log.WithField("component", "amqp").Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Event publisher connected", "exchange", cfg.Events.Exchange)

	return &PublisherHandle{Publisher: pub}, nil
}
