// Package publish delivers decision documents to downstream consumers over SQS.
package publish

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqsTypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"fishcast/internal/telemetry"
	"fishcast/internal/types"
)

// Message attribute names and values.
const (
	AttrRunID           = "run_id"
	AttrContentEncoding = "content_encoding"
	AttrContractVersion = "contract_version"

	EncodingIdentity = "identity"
	EncodingZstd     = "zstd+base64"
)

// DefaultCompressThreshold is the body size in bytes above which documents
// are compressed. SQS caps message bodies at 256 KiB.
const DefaultCompressThreshold = 64 * 1024

// SQSSender abstracts the SQS SendMessage operation for testability.
// Production code uses the *sqs.Client from aws-sdk-go-v2.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Publisher sends decision documents to the decision queue.
//
// Bodies larger than the threshold are zstd compressed and base64 encoded;
// the content_encoding attribute tells consumers which form they received.
type Publisher struct {
	client    SQSSender
	queueURL  string
	threshold int
	encoder   *zstd.Encoder
	metrics   telemetry.Metrics
	logger    types.Logger
}

// NewPublisher creates a Publisher. A threshold of zero or less uses
// DefaultCompressThreshold; a nil metrics sink discards metrics.
func NewPublisher(client SQSSender, queueURL string, threshold int, metrics telemetry.Metrics, logger types.Logger) (*Publisher, error) {
	if threshold <= 0 {
		threshold = DefaultCompressThreshold
	}
	if metrics == nil {
		metrics = telemetry.NopMetrics{}
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("publish: failed to create zstd encoder: %w", err)
	}
	return &Publisher{
		client:    client,
		queueURL:  queueURL,
		threshold: threshold,
		encoder:   enc,
		metrics:   metrics,
		logger:    logger,
	}, nil
}

// Publish serializes doc and sends it to the decision queue. A document
// without a run id is assigned one.
func (p *Publisher) Publish(ctx context.Context, doc *types.Decision) error {
	if doc.Meta.RunID == "" {
		doc.Meta.RunID = uuid.NewString()
	}

	body, err := json.Marshal(doc)
	if err != nil {
		p.metrics.RecordPublish(ctx, telemetry.ResultFailed)
		return fmt.Errorf("publish: failed to marshal decision: %w", err)
	}

	encoding := EncodingIdentity
	payload := string(body)
	if len(body) > p.threshold {
		encoding = EncodingZstd
		payload = base64.StdEncoding.EncodeToString(p.encoder.EncodeAll(body, nil))
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(payload),
		MessageAttributes: map[string]sqsTypes.MessageAttributeValue{
			AttrRunID:           stringAttr(doc.Meta.RunID),
			AttrContentEncoding: stringAttr(encoding),
		},
	}
	// SQS rejects empty attribute values.
	if v := doc.Meta.ContractVersion; v != "" {
		input.MessageAttributes[AttrContractVersion] = stringAttr(v)
	}

	if _, err := p.client.SendMessage(ctx, input); err != nil {
		p.metrics.RecordPublish(ctx, telemetry.ResultFailed)
		return types.NewAppError(types.ErrCodePublishFailed,
			fmt.Sprintf("failed to send decision to %s", p.queueURL), err).
			WithDetails(map[string]any{"run_id": doc.Meta.RunID})
	}
	p.metrics.RecordPublish(ctx, telemetry.ResultSuccess)

	p.logger.Info("decision published",
		"queue_url", p.queueURL,
		"run_id", doc.Meta.RunID,
		"content_encoding", encoding,
		"raw_bytes", len(body),
		"sent_bytes", len(payload),
	)
	return nil
}

// Decode reverses Publish's body encoding and parses the decision.
func Decode(body, encoding string) (*types.Decision, error) {
	raw := []byte(body)
	switch encoding {
	case "", EncodingIdentity:
	case EncodingZstd:
		compressed, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return nil, fmt.Errorf("publish: invalid base64 body: %w", err)
		}
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("publish: failed to create zstd decoder: %w", err)
		}
		defer dec.Close()
		if raw, err = dec.DecodeAll(compressed, nil); err != nil {
			return nil, fmt.Errorf("publish: zstd decompression failed: %w", err)
		}
	default:
		return nil, fmt.Errorf("publish: unknown content encoding %q", encoding)
	}

	var doc types.Decision
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("publish: failed to unmarshal decision: %w", err)
	}
	return &doc, nil
}

func stringAttr(v string) sqsTypes.MessageAttributeValue {
	return sqsTypes.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(v)}
}
