package message

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

// messageReader は *kafka.Consumer のうちコンシューマが使う部分です。
type messageReader interface {
	Subscribe(topic string, rebalanceCb kafka.RebalanceCb) error
	ReadMessage(timeout time.Duration) (*kafka.Message, error)
	Close() error
}

// messageWriter は *kafka.Producer のうち DLQ 送信に使う部分です。
type messageWriter interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Flush(timeoutMs int) int
	Close()
}

// Consumer はカタログ変更イベントを消費し、CatalogService に適用します。
type Consumer struct {
	consumer          messageReader
	producer          messageWriter
	svc               port.CatalogService
	logger            *zap.Logger
	topic             string
	deadLetterTopic   string
	maxRetries        int
	initialBackoff    time.Duration
	maxBackoff        time.Duration
	backoffMultiplier float64
}

const (
	defaultMaxRetries        = 3
	defaultInitialBackoff    = 100 * time.Millisecond
	defaultMaxBackoff        = 5 * time.Second
	defaultBackoffMultiplier = 2.0
	producerFlushTimeout     = 5 * time.Second
)

// Option はConsumerのオプションを設定します。
type Option func(*Consumer)

// WithDeadLetterTopic はDLQトピック名を指定します。
func WithDeadLetterTopic(topic string) Option {
	return func(c *Consumer) {
		if topic != "" {
			c.deadLetterTopic = topic
		}
	}
}

// RetryConfig はリトライ動作の設定です。
type RetryConfig struct {
	MaxRetries int
	// InitialBackoff は初回リトライまでの待機時間です。
	InitialBackoff time.Duration
	// MaxBackoff は待機時間の上限です。
	MaxBackoff time.Duration
	// Multiplier は指数バックオフの倍率です。
	Multiplier float64
}

// WithRetryConfig はリトライ設定を適用します。
func WithRetryConfig(cfg RetryConfig) Option {
	return func(c *Consumer) {
		if cfg.MaxRetries >= 0 {
			c.maxRetries = cfg.MaxRetries
		}
		if cfg.InitialBackoff > 0 {
			c.initialBackoff = cfg.InitialBackoff
		}
		if cfg.MaxBackoff > 0 {
			c.maxBackoff = cfg.MaxBackoff
		}
		if cfg.Multiplier > 0 {
			c.backoffMultiplier = cfg.Multiplier
		}
	}
}

// NewConsumer は新しいConsumerインスタンスを生成します。
func NewConsumer(consumer messageReader, producer messageWriter, svc port.CatalogService, logger *zap.Logger, topic string, opts ...Option) *Consumer {
	c := &Consumer{
		consumer:          consumer,
		producer:          producer,
		svc:               svc,
		logger:            logger,
		topic:             topic,
		deadLetterTopic:   topic + ".dlq",
		maxRetries:        defaultMaxRetries,
		initialBackoff:    defaultInitialBackoff,
		maxBackoff:        defaultMaxBackoff,
		backoffMultiplier: defaultBackoffMultiplier,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.backoffMultiplier < 1 {
		c.backoffMultiplier = defaultBackoffMultiplier
	}
	if c.initialBackoff <= 0 {
		c.initialBackoff = defaultInitialBackoff
	}
	if c.maxBackoff < c.initialBackoff {
		c.maxBackoff = defaultMaxBackoff
	}

	return c
}

// Run はKafkaコンシューマを開始します。
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.consumer.Subscribe(c.topic, nil); err != nil {
		_ = c.close()
		return err
	}
	c.logger.Info("kafka consumer started", zap.String("topic", c.topic))

	defer func() {
		if err := c.close(); err != nil {
			c.logger.Warn("failed to close kafka consumer cleanly", zap.Error(err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("shutting down kafka consumer")
			return ctx.Err()
		default:
			msg, err := c.consumer.ReadMessage(100 * time.Millisecond)
			if err != nil {
				var kafkaErr kafka.Error
				if errors.As(err, &kafkaErr) && kafkaErr.Code() == kafka.ErrTimedOut {
					// タイムアウトエラーは無視
					continue
				}
				c.logger.Error("kafka read error", zap.Error(err))
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				c.logger.Error("failed to handle kafka message",
					zap.String("topic", topicOf(msg)),
					zap.ByteString("key", msg.Key),
					zap.Error(err),
				)
			}
		}
	}
}

// processMessage はリトライを伴うメッセージ処理を行います。
func (c *Consumer) processMessage(ctx context.Context, msg *kafka.Message) error {
	var lastErr error
	backoff := c.initialBackoff
	tracer := otel.Tracer("github.com/ajaykrishnavemula/Career-Hub-API/internal/adapter/message")
	topic := topicOf(msg)
	ctx, span := tracer.Start(ctx, "kafka.consumer.process", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	span.SetAttributes(
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.operation", "process"),
		attribute.String("messaging.destination", topic),
		attribute.String("messaging.destination_kind", "topic"),
		attribute.Int64("messaging.kafka.partition", int64(msg.TopicPartition.Partition)),
		attribute.Int64("messaging.kafka.offset", int64(msg.TopicPartition.Offset)),
	)
	if len(msg.Key) > 0 {
		span.SetAttributes(attribute.String("messaging.kafka.key", string(msg.Key)))
	}

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			span.SetStatus(codes.Error, "context cancelled")
			return ctx.Err()
		}

		lastErr = c.handleMessage(ctx, msg)
		if lastErr == nil {
			if attempt > 0 {
				c.logger.Info("message processed after retry",
					zap.String("topic", topic),
					zap.Int("attempts", attempt+1),
				)
				span.AddEvent("message processed after retry",
					trace.WithAttributes(attribute.Int("messaging.kafka.retry_count", attempt)),
				)
			}
			span.SetAttributes(attribute.Int("messaging.kafka.retry_count", attempt))
			span.SetStatus(codes.Ok, "processed")
			return nil
		}

		span.RecordError(lastErr, trace.WithAttributes(
			attribute.Int("messaging.kafka.retry_attempt", attempt),
		))

		if attempt == c.maxRetries || !retryable(lastErr) {
			c.logger.Error("giving up on message, sending to DLQ",
				zap.String("topic", topic),
				zap.Int("attempts", attempt+1),
				zap.Error(lastErr),
			)

			if err := c.sendToDeadLetter(ctx, msg, lastErr); err != nil {
				c.logger.Error("failed to send message to DLQ", zap.Error(err))
				span.RecordError(err, trace.WithAttributes(attribute.String("phase", "dlq")))
				span.SetStatus(codes.Error, err.Error())
				return errors.Join(lastErr, err)
			}
			span.AddEvent("message sent to DLQ")
			span.SetStatus(codes.Error, lastErr.Error())
			return lastErr
		}

		c.logger.Warn("message processing failed, will retry",
			zap.String("topic", topic),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(lastErr),
		)
		span.AddEvent("message processing failed",
			trace.WithAttributes(
				attribute.Int("messaging.kafka.retry_attempt", attempt),
				attribute.String("error", lastErr.Error()),
			),
		)

		select {
		case <-ctx.Done():
			span.SetStatus(codes.Error, "context cancelled while waiting for retry")
			return ctx.Err()
		case <-time.After(backoff):
		}

		nextBackoff := time.Duration(float64(backoff) * c.backoffMultiplier)
		if nextBackoff > c.maxBackoff {
			nextBackoff = c.maxBackoff
		}
		backoff = nextBackoff
	}

	return lastErr
}

func (c *Consumer) sendToDeadLetter(ctx context.Context, msg *kafka.Message, procErr error) error {
	if isNilWriter(c.producer) {
		return errors.New("dlq producer not configured")
	}

	deliveryChan := make(chan kafka.Event, 1)
	headers := append([]kafka.Header{}, msg.Headers...)
	if msg.TopicPartition.Topic != nil {
		headers = append(headers, kafka.Header{
			Key:   "x-original-topic",
			Value: []byte(*msg.TopicPartition.Topic),
		})
	}
	headers = append(headers,
		kafka.Header{Key: "x-original-partition", Value: []byte(strconv.Itoa(int(msg.TopicPartition.Partition)))},
		kafka.Header{Key: "x-original-offset", Value: []byte(strconv.FormatInt(int64(msg.TopicPartition.Offset), 10))},
		kafka.Header{Key: "x-error", Value: []byte(procErr.Error())},
	)

	dlqTopic := c.deadLetterTopic
	if err := c.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &dlqTopic, Partition: kafka.PartitionAny},
		Key:            msg.Key,
		Value:          msg.Value,
		Headers:        headers,
	}, deliveryChan); err != nil {
		close(deliveryChan)
		return err
	}

	select {
	case event := <-deliveryChan:
		if m, ok := event.(*kafka.Message); ok {
			return m.TopicPartition.Error
		}
	case <-ctx.Done():
		// ensure delivery channel is drained to avoid blocking the producer goroutine
		select {
		case event := <-deliveryChan:
			if m, ok := event.(*kafka.Message); ok {
				if tpErr := m.TopicPartition.Error; tpErr != nil {
					return errors.Join(ctx.Err(), tpErr)
				}
			}
		case <-time.After(time.Second):
		}
		return ctx.Err()
	}

	return nil
}

func (c *Consumer) close() error {
	var closeErr error
	if c.consumer != nil {
		if err := c.consumer.Close(); err != nil {
			closeErr = err
		}
	}

	if !isNilWriter(c.producer) {
		flushTimeout := int(producerFlushTimeout / time.Millisecond)
		if flushTimeout < 0 {
			flushTimeout = 0
		}
		_ = c.producer.Flush(flushTimeout)
		c.producer.Close()
	}

	return closeErr
}

// handleMessage は単一のカタログイベントを CatalogService に適用します。
func (c *Consumer) handleMessage(ctx context.Context, msg *kafka.Message) error {
	ev, err := decodeEvent(msg.Value)
	if err != nil {
		return err
	}

	p := ev.Payload
	if p.Action == ActionDelete {
		err = c.deleteDocument(ctx, p.Kind, p.ID)
		if errors.Is(err, port.ErrNotFound) {
			c.logger.Debug("delete event for missing document ignored",
				zap.String("kind", string(p.Kind)),
				zap.String("document_id", p.ID),
			)
			return nil
		}
		return err
	}

	switch p.Kind {
	case port.KindJob:
		job, err := decodeDocument(p.Document, func(j *port.JobDocument, id string) { j.ID = id }, p.ID)
		if err != nil {
			return err
		}
		_, err = c.svc.SaveJob(ctx, job)
		return err
	case port.KindApplicant:
		applicant, err := decodeDocument(p.Document, func(a *port.ApplicantDocument, id string) { a.ID = id }, p.ID)
		if err != nil {
			return err
		}
		_, err = c.svc.SaveApplicant(ctx, applicant)
		return err
	default:
		company, err := decodeDocument(p.Document, func(co *port.CompanyDocument, id string) { co.ID = id }, p.ID)
		if err != nil {
			return err
		}
		_, err = c.svc.SaveCompany(ctx, company)
		return err
	}
}

func (c *Consumer) deleteDocument(ctx context.Context, kind port.DocumentKind, id string) error {
	switch kind {
	case port.KindJob:
		return c.svc.DeleteJob(ctx, id)
	case port.KindApplicant:
		return c.svc.DeleteApplicant(ctx, id)
	default:
		return c.svc.DeleteCompany(ctx, id)
	}
}

// retryable reports whether err may succeed on a later attempt.
func retryable(err error) bool {
	return !errors.Is(err, errMalformedEvent) && !errors.Is(err, port.ErrInvalidInput)
}

func isNilWriter(w messageWriter) bool {
	if w == nil {
		return true
	}
	p, ok := w.(*kafka.Producer)
	return ok && p == nil
}

func topicOf(msg *kafka.Message) string {
	if msg.TopicPartition.Topic == nil {
		return ""
	}
	return *msg.TopicPartition.Topic
}
