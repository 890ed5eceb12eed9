package output

import (
	"context"
	"fmt"
	"net"

	"github.com/pion/rtp"
	"golang.org/x/time/rate"

	"github.com/zsiec/nalforge/internal/config"
	apperrors "github.com/zsiec/nalforge/internal/errors"
	"github.com/zsiec/nalforge/internal/logger"
	"github.com/zsiec/nalforge/internal/metrics"
)

// UDPSender sends RTP packets to one address at a bounded packet rate.
type UDPSender struct {
	conn    *net.UDPConn
	limiter *rate.Limiter
	log     logger.Logger
}

// NewUDPSender dials cfg.SendAddr.
func NewUDPSender(cfg config.RTPConfig, log logger.Logger) (*UDPSender, error) {
	addr, err := net.ResolveUDPAddr("udp", cfg.SendAddr)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid send address %q: %v", cfg.SendAddr, err))
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, apperrors.WrapInternalError(err, fmt.Sprintf("failed to dial %s", cfg.SendAddr))
	}

	limit := rate.Inf
	if cfg.PacketsPerSecond > 0 {
		limit = rate.Limit(cfg.PacketsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &UDPSender{
		conn:    conn,
		limiter: rate.NewLimiter(limit, burst),
		log: logger.OrNull(log).WithFields(map[string]interface{}{
			"component": "udp_sender",
			"addr":      addr.String(),
		}),
	}, nil
}

// Send writes every packet, waiting on the rate limiter before each one.
// It returns the number of packets sent before ctx ended or a write
// failed.
func (s *UDPSender) Send(ctx context.Context, packets []*rtp.Packet) (int, error) {
	sent := 0
	defer func() {
		metrics.AddRTPPackets("sent", sent)
	}()

	for _, pkt := range packets {
		if err := s.limiter.Wait(ctx); err != nil {
			return sent, err
		}
		raw, err := pkt.Marshal()
		if err != nil {
			return sent, apperrors.WrapInternalError(err, "failed to marshal RTP packet")
		}
		if _, err := s.conn.Write(raw); err != nil {
			return sent, apperrors.WrapInternalError(err, "failed to send RTP packet")
		}
		sent++
	}

	s.log.WithField("packets", sent).Info("RTP stream sent")
	return sent, nil
}

// Close releases the socket.
func (s *UDPSender) Close() error {
	return s.conn.Close()
}
