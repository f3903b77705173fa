package message

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

// MockCatalogService は port.CatalogService のモックです。
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) SaveJob(ctx context.Context, job port.JobDocument) (*port.JobDocument, error) {
	args := m.Called(ctx, job)
	return &job, args.Error(0)
}

func (m *MockCatalogService) UpdateJobAs(ctx context.Context, caller port.Caller, job port.JobDocument) (*port.JobDocument, error) {
	args := m.Called(ctx, caller, job)
	return &job, args.Error(0)
}

func (m *MockCatalogService) DeleteJob(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogService) DeleteJobAs(ctx context.Context, caller port.Caller, id string) error {
	return m.Called(ctx, caller, id).Error(0)
}

func (m *MockCatalogService) SaveApplicant(ctx context.Context, applicant port.ApplicantDocument) (*port.ApplicantDocument, error) {
	args := m.Called(ctx, applicant)
	return &applicant, args.Error(0)
}

func (m *MockCatalogService) DeleteApplicant(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogService) DeleteApplicantByUserID(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockCatalogService) SaveCompany(ctx context.Context, company port.CompanyDocument) (*port.CompanyDocument, error) {
	args := m.Called(ctx, company)
	return &company, args.Error(0)
}

func (m *MockCatalogService) DeleteCompany(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// fakeProducer は DLQ への送信を記録します。
type fakeProducer struct {
	mu       sync.Mutex
	messages []*kafka.Message
	closed   bool
}

func (p *fakeProducer) Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error {
	p.mu.Lock()
	p.messages = append(p.messages, msg)
	p.mu.Unlock()
	deliveryChan <- &kafka.Message{TopicPartition: msg.TopicPartition}
	return nil
}

func (p *fakeProducer) Flush(int) int { return 0 }

func (p *fakeProducer) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

func (p *fakeProducer) sent() []*kafka.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*kafka.Message(nil), p.messages...)
}

// fakeReader は用意されたメッセージを順に返し、尽きたらタイムアウトを返します。
type fakeReader struct {
	mu         sync.Mutex
	queue      []*kafka.Message
	subscribed string
	closed     bool
}

func (r *fakeReader) Subscribe(topic string, _ kafka.RebalanceCb) error {
	r.subscribed = topic
	return nil
}

func (r *fakeReader) ReadMessage(timeout time.Duration) (*kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) == 0 {
		time.Sleep(time.Millisecond)
		return nil, kafka.NewError(kafka.ErrTimedOut, "timed out", false)
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	return msg, nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

const testTopic = "career-hub.catalog.events"

func newMessage(value string) *kafka.Message {
	topic := testTopic
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: 0, Offset: 42},
		Key:            []byte("key-1"),
		Value:          []byte(value),
	}
}

func newTestConsumer(svc port.CatalogService, producer messageWriter) *Consumer {
	return NewConsumer(&fakeReader{}, producer, svc, zap.NewNop(), testTopic,
		WithRetryConfig(RetryConfig{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}),
	)
}

func headerValue(msg *kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestConsumer_HandleMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 求人の UPSERT はペイロードの id で保存される", func(t *testing.T) {
		svc := new(MockCatalogService)
		c := newTestConsumer(svc, &fakeProducer{})

		svc.On("SaveJob", mock.Anything, port.JobDocument{ID: "j1", Title: "Go Dev", Location: port.Location{Remote: true}}).Return(nil).Once()

		err := c.handleMessage(ctx, newMessage(`{"payload":{"kind":"job","action":"UPSERT","id":"j1","document":{"id":"ignored","title":"Go Dev","location":{"remote":true}}}}`))
		require.NoError(t, err)
		svc.AssertExpectations(t)
	})

	t.Run("正常系: 応募者と企業の UPSERT", func(t *testing.T) {
		svc := new(MockCatalogService)
		c := newTestConsumer(svc, &fakeProducer{})

		svc.On("SaveApplicant", mock.Anything, port.ApplicantDocument{ID: "a1", UserID: "u1"}).Return(nil).Once()
		svc.On("SaveCompany", mock.Anything, port.CompanyDocument{ID: "c1", Name: "Acme"}).Return(nil).Once()

		require.NoError(t, c.handleMessage(ctx, newMessage(`{"payload":{"kind":"applicant","action":"UPSERT","id":"a1","document":{"userId":"u1"}}}`)))
		require.NoError(t, c.handleMessage(ctx, newMessage(`{"payload":{"kind":"company","action":"UPSERT","id":"c1","document":{"name":"Acme"}}}`)))
		svc.AssertExpectations(t)
	})

	t.Run("正常系: 存在しないドキュメントの DELETE は成功扱い", func(t *testing.T) {
		svc := new(MockCatalogService)
		c := newTestConsumer(svc, &fakeProducer{})

		svc.On("DeleteApplicant", mock.Anything, "a9").Return(port.ErrNotFound).Once()

		require.NoError(t, c.handleMessage(ctx, newMessage(`{"payload":{"kind":"applicant","action":"DELETE","id":"a9"}}`)))
	})

	t.Run("異常系: 不正なイベント", func(t *testing.T) {
		c := newTestConsumer(new(MockCatalogService), &fakeProducer{})

		for _, raw := range []string{
			`not json`,
			`{"payload":{"kind":"resume","action":"UPSERT","document":{}}}`,
			`{"payload":{"kind":"job","action":"PATCH","id":"j1"}}`,
			`{"payload":{"kind":"job","action":"UPSERT","id":"j1"}}`,
			`{"payload":{"kind":"job","action":"DELETE"}}`,
			`{"payload":{"kind":"job","action":"UPSERT","document":"oops"}}`,
		} {
			err := c.handleMessage(ctx, newMessage(raw))
			assert.ErrorIs(t, err, errMalformedEvent, raw)
		}
	})
}

func TestConsumer_ProcessMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 一時的な失敗はリトライで回復する", func(t *testing.T) {
		svc := new(MockCatalogService)
		producer := &fakeProducer{}
		c := newTestConsumer(svc, producer)

		svc.On("DeleteJob", mock.Anything, "j1").Return(errors.New("db busy")).Once()
		svc.On("DeleteJob", mock.Anything, "j1").Return(nil).Once()

		require.NoError(t, c.processMessage(ctx, newMessage(`{"payload":{"kind":"job","action":"DELETE","id":"j1"}}`)))
		svc.AssertNumberOfCalls(t, "DeleteJob", 2)
		assert.Empty(t, producer.sent())
	})

	t.Run("異常系: リトライを使い切ると DLQ に送る", func(t *testing.T) {
		svc := new(MockCatalogService)
		producer := &fakeProducer{}
		c := newTestConsumer(svc, producer)

		svc.On("DeleteCompany", mock.Anything, "c1").Return(errors.New("db down"))

		err := c.processMessage(ctx, newMessage(`{"payload":{"kind":"company","action":"DELETE","id":"c1"}}`))
		assert.Error(t, err)
		svc.AssertNumberOfCalls(t, "DeleteCompany", 3)

		sent := producer.sent()
		require.Len(t, sent, 1)
		assert.Equal(t, testTopic+".dlq", *sent[0].TopicPartition.Topic)
		assert.Equal(t, testTopic, headerValue(sent[0], "x-original-topic"))
		assert.Equal(t, "42", headerValue(sent[0], "x-original-offset"))
		assert.Equal(t, "db down", headerValue(sent[0], "x-error"))
	})

	t.Run("異常系: 不正なイベントはリトライせず DLQ に送る", func(t *testing.T) {
		svc := new(MockCatalogService)
		producer := &fakeProducer{}
		c := newTestConsumer(svc, producer)

		err := c.processMessage(ctx, newMessage(`{"payload":{"kind":"job","action":"UPSERT"}}`))
		assert.ErrorIs(t, err, errMalformedEvent)
		require.Len(t, producer.sent(), 1)
	})

	t.Run("異常系: 入力エラーもリトライしない", func(t *testing.T) {
		svc := new(MockCatalogService)
		producer := &fakeProducer{}
		c := newTestConsumer(svc, producer)

		svc.On("SaveCompany", mock.Anything, mock.Anything).Return(port.ErrInvalidInput).Once()

		err := c.processMessage(ctx, newMessage(`{"payload":{"kind":"company","action":"UPSERT","document":{}}}`))
		assert.ErrorIs(t, err, port.ErrInvalidInput)
		svc.AssertNumberOfCalls(t, "SaveCompany", 1)
		require.Len(t, producer.sent(), 1)
	})

	t.Run("異常系: DLQ 未設定", func(t *testing.T) {
		svc := new(MockCatalogService)
		c := newTestConsumer(svc, nil)

		err := c.processMessage(ctx, newMessage(`not json`))
		assert.ErrorContains(t, err, "dlq producer not configured")
	})
}

func TestConsumer_Run(t *testing.T) {
	svc := new(MockCatalogService)
	producer := &fakeProducer{}
	reader := &fakeReader{queue: []*kafka.Message{
		newMessage(`{"payload":{"kind":"job","action":"DELETE","id":"j1"}}`),
	}}
	c := NewConsumer(reader, producer, svc, zap.NewNop(), testTopic)

	processed := make(chan struct{})
	svc.On("DeleteJob", mock.Anything, "j1").Return(nil).Once().Run(func(mock.Arguments) {
		close(processed)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	select {
	case <-processed:
	case <-time.After(5 * time.Second):
		t.Fatal("message was not processed")
	}
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop")
	}

	assert.Equal(t, testTopic, reader.subscribed)
	assert.True(t, reader.closed)
	assert.True(t, producer.closed)
}
