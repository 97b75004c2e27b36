package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
	"github.com/DarshanM12/student-ecommerce/internal/messaging/kafka"
	"github.com/DarshanM12/student-ecommerce/internal/storefront/historyclient"
)

const (
	defaultReplayLimit = 1000
	defaultIdleTimeout = 2 * time.Second
	defaultAPIURL      = "http://localhost:3000"
)

type config struct {
	brokers     []string
	topic       string
	apiURL      string
	userEmail   string
	limit       int
	execute     bool
	idleTimeout time.Duration
}

type offsetClient interface {
	GetOffset(topic string, partition int32, time int64) (int64, error)
	Partitions(topic string) ([]int32, error)
	Close() error
}

type partitionConsumer interface {
	Messages() <-chan *sarama.ConsumerMessage
	Errors() <-chan *sarama.ConsumerError
	Close() error
}

type partitionConsumerSource interface {
	ConsumePartition(topic string, partition int32, offset int64) (partitionConsumer, error)
	Close() error
}

type saramaConsumerAdapter struct {
	consumer sarama.Consumer
}

func (a saramaConsumerAdapter) ConsumePartition(topic string, partition int32, offset int64) (partitionConsumer, error) {
	pc, err := a.consumer.ConsumePartition(topic, partition, offset)
	if err != nil {
		return nil, err
	}
	return pc, nil
}

func (a saramaConsumerAdapter) Close() error {
	if a.consumer == nil {
		return nil
	}
	return a.consumer.Close()
}

var newReplayDependencies = func(cfg config) (offsetClient, partitionConsumerSource, domain.HistoryRemote, error) {
	consumerConfig := sarama.NewConfig()
	consumerConfig.Consumer.Return.Errors = true

	client, err := sarama.NewClient(cfg.brokers, consumerConfig)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create kafka client: %w", err)
	}

	rawConsumer, err := sarama.NewConsumerFromClient(client)
	if err != nil {
		_ = client.Close()
		return nil, nil, nil, fmt.Errorf("create kafka consumer: %w", err)
	}

	var remote domain.HistoryRemote
	if cfg.execute {
		remote = historyclient.NewClient(cfg.apiURL, historyclient.DefaultTimeout)
	}
	return client, saramaConsumerAdapter{consumer: rawConsumer}, remote, nil
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)

	cfg, err := readConfig()
	if err != nil {
		fail("%v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		fail("history replay failed: %v", err)
	}
}

func readConfig() (config, error) {
	var (
		brokersRaw string
		cfg        config
	)

	flag.StringVar(&brokersRaw, "brokers", "", "Kafka brokers as comma-separated list (fallback: STORE_KAFKA_BROKERS)")
	flag.StringVar(&cfg.topic, "topic", kafka.TopicHistoryEvents, "history events topic")
	flag.StringVar(&cfg.apiURL, "api-url", defaultAPIURL, "shopping history service URL for execute mode")
	flag.StringVar(&cfg.userEmail, "user", "", "replay only events of this user")
	flag.IntVar(&cfg.limit, "limit", defaultReplayLimit, "max number of messages to scan")
	flag.BoolVar(&cfg.execute, "execute", false, "apply events to the history service; default is dry-run")
	flag.DurationVar(&cfg.idleTimeout, "idle-timeout", defaultIdleTimeout, "idle timeout per partition")
	flag.Parse()

	if strings.TrimSpace(brokersRaw) == "" {
		brokersRaw = os.Getenv("STORE_KAFKA_BROKERS")
	}

	cfg.brokers = parseBrokers(brokersRaw)
	cfg.userEmail = strings.TrimSpace(cfg.userEmail)
	if len(cfg.brokers) == 0 {
		return config{}, fmt.Errorf("kafka brokers are required (-brokers or STORE_KAFKA_BROKERS)")
	}
	if strings.TrimSpace(cfg.topic) == "" {
		return config{}, fmt.Errorf("topic is required")
	}
	if cfg.execute && strings.TrimSpace(cfg.apiURL) == "" {
		return config{}, fmt.Errorf("api-url is required in execute mode")
	}
	if cfg.limit <= 0 {
		return config{}, fmt.Errorf("limit must be > 0")
	}
	if cfg.idleTimeout <= 0 {
		return config{}, fmt.Errorf("idle-timeout must be > 0")
	}

	return cfg, nil
}

func parseBrokers(raw string) []string {
	chunks := strings.Split(raw, ",")
	brokers := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		broker := strings.TrimSpace(chunk)
		if broker == "" {
			continue
		}
		brokers = append(brokers, broker)
	}
	return brokers
}

func run(ctx context.Context, cfg config) error {
	log.WithFields(log.Fields{
		"topic":   cfg.topic,
		"limit":   cfg.limit,
		"execute": cfg.execute,
		"user":    cfg.userEmail,
	}).Info("starting history replay")

	client, consumer, remote, err := newReplayDependencies(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if consumer != nil {
			_ = consumer.Close()
		}
		if client != nil {
			_ = client.Close()
		}
	}()

	return runReplay(ctx, cfg, client, consumer, remote)
}

func runReplay(ctx context.Context, cfg config, client offsetClient, consumer partitionConsumerSource, remote domain.HistoryRemote) error {
	if client == nil || consumer == nil {
		return fmt.Errorf("kafka client and consumer are required")
	}
	if cfg.execute && remote == nil {
		return fmt.Errorf("history remote is required in execute mode")
	}

	partitions, err := client.Partitions(cfg.topic)
	if err != nil {
		return fmt.Errorf("get partitions for topic %s: %w", cfg.topic, err)
	}
	if len(partitions) == 0 {
		log.WithField("topic", cfg.topic).Warn("history topic has no partitions")
		return nil
	}
	sort.Slice(partitions, func(i, j int) bool { return partitions[i] < partitions[j] })

	var total partitionStats
	for _, partition := range partitions {
		if total.processed >= cfg.limit {
			break
		}

		stats, err := processPartition(ctx, consumer, client, remote, cfg, partition, cfg.limit-total.processed)
		if err != nil {
			return err
		}
		total.processed += stats.processed
		total.applied += stats.applied
		total.skipped += stats.skipped
	}

	mode := "dry-run"
	if cfg.execute {
		mode = "execute"
	}
	log.WithFields(log.Fields{
		"mode":      mode,
		"processed": total.processed,
		"applied":   total.applied,
		"skipped":   total.skipped,
	}).Info("history replay finished")

	return nil
}

type partitionStats struct {
	processed int
	applied   int
	skipped   int
}

func processPartition(
	ctx context.Context,
	consumer partitionConsumerSource,
	client offsetClient,
	remote domain.HistoryRemote,
	cfg config,
	partition int32,
	limit int,
) (partitionStats, error) {
	var stats partitionStats
	if limit <= 0 {
		return stats, nil
	}

	oldest, err := client.GetOffset(cfg.topic, partition, sarama.OffsetOldest)
	if err != nil {
		return stats, fmt.Errorf("get oldest offset for partition %d: %w", partition, err)
	}
	newest, err := client.GetOffset(cfg.topic, partition, sarama.OffsetNewest)
	if err != nil {
		return stats, fmt.Errorf("get newest offset for partition %d: %w", partition, err)
	}
	if newest <= oldest {
		return stats, nil
	}

	pc, err := consumer.ConsumePartition(cfg.topic, partition, oldest)
	if err != nil {
		return stats, fmt.Errorf("consume partition %d: %w", partition, err)
	}
	defer func() { _ = pc.Close() }()

	idleTimer := time.NewTimer(cfg.idleTimeout)
	defer idleTimer.Stop()

	for stats.processed < limit {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		case err := <-pc.Errors():
			if err != nil {
				return stats, fmt.Errorf("partition %d consumer error: %w", partition, err)
			}
		case msg, ok := <-pc.Messages():
			if !ok || msg == nil {
				return stats, nil
			}

			if !idleTimer.Stop() {
				select {
				case <-idleTimer.C:
				default:
				}
			}
			idleTimer.Reset(cfg.idleTimeout)

			if msg.Offset >= newest {
				return stats, nil
			}
			stats.processed++

			applied, err := handleMessage(ctx, remote, cfg, msg)
			if err != nil {
				return stats, err
			}
			if applied {
				stats.applied++
			} else {
				stats.skipped++
			}

			if msg.Offset+1 >= newest {
				return stats, nil
			}
		case <-idleTimer.C:
			return stats, nil
		}
	}

	return stats, nil
}

// handleMessage возвращает false, если сообщение пропущено.
func handleMessage(ctx context.Context, remote domain.HistoryRemote, cfg config, msg *sarama.ConsumerMessage) (bool, error) {
	event, err := decodeEvent(msg.Value)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"partition": msg.Partition,
			"offset":    msg.Offset,
		}).Warn("skip malformed history event")
		return false, nil
	}
	if !matchesUser(event, cfg.userEmail) {
		return false, nil
	}

	if !cfg.execute {
		log.WithFields(log.Fields{
			"partition":  msg.Partition,
			"offset":     msg.Offset,
			"event_type": event.EventType,
			"order_id":   event.OrderID,
		}).Info("history replay candidate")
		return true, nil
	}
	applied, err := applyEvent(ctx, remote, event)
	if err != nil {
		return false, fmt.Errorf("apply event %s: %w", event.ID, err)
	}
	return applied, nil
}

func decodeEvent(raw []byte) (kafka.HistoryEvent, error) {
	var event kafka.HistoryEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return kafka.HistoryEvent{}, fmt.Errorf("decode history event: %w", err)
	}

	switch event.EventType {
	case kafka.EventTypeHistorySaved:
		if event.Record == nil {
			return kafka.HistoryEvent{}, errors.New("saved event does not contain record")
		}
	case kafka.EventTypeHistoryDeleted:
		if strings.TrimSpace(event.OrderID) == "" {
			return kafka.HistoryEvent{}, errors.New("deleted event does not contain order id")
		}
	default:
		return kafka.HistoryEvent{}, fmt.Errorf("unsupported event type %q", event.EventType)
	}
	return event, nil
}

// matchesUser: события удаления не несут владельца и проходят любой фильтр.
func matchesUser(event kafka.HistoryEvent, email string) bool {
	if email == "" || event.EventType == kafka.EventTypeHistoryDeleted {
		return true
	}
	return event.UserEmail == email
}

// applyEvent применяет событие к сервису истории. Сервис не дедуплицирует записи,
// поэтому сохранение пропускается, если у владельца уже есть запись с тем же ключом.
func applyEvent(ctx context.Context, remote domain.HistoryRemote, event kafka.HistoryEvent) (bool, error) {
	if remote == nil {
		return false, fmt.Errorf("history remote is nil")
	}

	switch event.EventType {
	case kafka.EventTypeHistorySaved:
		record := *event.Record
		existing, err := remote.ListByOwner(ctx, record.UserEmail)
		if err != nil {
			return false, err
		}
		for _, stored := range existing {
			if stored.Matches(record.Key()) {
				return false, nil
			}
		}
		return true, remote.Save(ctx, record)
	case kafka.EventTypeHistoryDeleted:
		err := remote.Delete(ctx, event.OrderID)
		if errors.Is(err, domain.ErrHistoryNotFound) {
			return false, nil
		}
		return err == nil, err
	default:
		return false, fmt.Errorf("unsupported event type %q", event.EventType)
	}
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
