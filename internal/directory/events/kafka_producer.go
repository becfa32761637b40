package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/gartstein/directory/internal/directory/models"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var jsonMarshal = json.Marshal

// DefaultTopic carries every employee change event.
const DefaultTopic = "directory.employees"

// queueSize is the number of events buffered before Publish starts dropping.
const queueSize = 1000

type EventType string

const (
	EmployeeCreated EventType = "employee_created"
	EmployeeUpdated EventType = "employee_updated"
	EmployeeDeleted EventType = "employee_deleted"
	EmployeesClear  EventType = "employees_cleared"
)

type Event struct {
	ID         uuid.UUID        `json:"id"`
	Type       EventType        `json:"type"`
	Employee   *models.Employee `json:"employee,omitempty"`
	OccurredAt time.Time        `json:"occurredAt"`
}

// Key is the partition key: the employee id, or "all" for a clear.
func (ev Event) Key() string {
	if ev.Employee == nil {
		return "all"
	}
	return strconv.FormatInt(ev.Employee.ID, 10)
}

type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer    KafkaWriter
	events    chan Event
	logger    *zap.Logger
	closeChan chan struct{}
	done      chan struct{}
}

func NewProducer(brokers []string, logger *zap.Logger, topic string) (*Producer, error) {
	// Create topic if it doesn't exist
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     3,
		ReplicationFactor: 1,
	})
	if err != nil {
		logger.Warn("failed to create topic (may already exist)", zap.Error(err))
	}

	return newProducer(&kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.Hash{},
		Topic:    topic,
	}, logger), nil
}

func newProducer(writer KafkaWriter, logger *zap.Logger) *Producer {
	p := &Producer{
		writer:    writer,
		events:    make(chan Event, queueSize),
		logger:    logger.Named("kafka_producer"),
		closeChan: make(chan struct{}),
		done:      make(chan struct{}),
	}
	go p.eventLoop()
	return p
}

// Publish is a store subscriber: it turns a change into an event and queues it.
func (p *Producer) Publish(c models.Change) {
	var eventType EventType
	switch c.Type {
	case models.EmployeeAdded:
		eventType = EmployeeCreated
	case models.EmployeeEdited:
		eventType = EmployeeUpdated
	case models.EmployeeRemoved:
		eventType = EmployeeDeleted
	case models.EmployeesCleared:
		eventType = EmployeesClear
	default:
		p.logger.Warn("Ignoring unknown change", zap.String("change", string(c.Type)))
		return
	}
	p.Produce(eventType, c.Employee)
}

func (p *Producer) Produce(eventType EventType, employee *models.Employee) {
	ev := Event{
		ID:         uuid.New(),
		Type:       eventType,
		Employee:   employee,
		OccurredAt: time.Now().UTC(),
	}
	select {
	case p.events <- ev:
	default:
		p.logger.Warn("Kafka producer queue full, dropping event",
			zap.String("event_type", string(eventType)),
			zap.String("employee_id", ev.Key()),
		)
	}
}

func (p *Producer) eventLoop() {
	defer close(p.done)
	for {
		select {
		case event := <-p.events:
			p.sendEvent(context.Background(), event)
		case <-p.closeChan:
			return
		}
	}
}

func (p *Producer) sendEvent(ctx context.Context, event Event) {
	value, err := jsonMarshal(event)
	if err != nil {
		p.logger.Error("Failed to serialize event",
			zap.Error(err),
			zap.String("employee_id", event.Key()),
		)
		return
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Key()),
		Value: value,
	})
	if err != nil {
		p.logger.Error("Failed to produce event",
			zap.Error(err),
			zap.String("event_type", string(event.Type)),
			zap.String("employee_id", event.Key()),
		)
	}
}

// Close stops the event loop, flushes queued events and closes the writer.
func (p *Producer) Close() {
	close(p.closeChan)
	<-p.done
	for {
		select {
		case event := <-p.events:
			p.sendEvent(context.Background(), event)
			continue
		default:
		}
		break
	}
	if err := p.writer.Close(); err != nil {
		p.logger.Error("Failed to close Kafka writer", zap.Error(err))
	}
}
