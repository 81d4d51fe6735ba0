package elastic_client

import (
	"bytes"
	"context"
	"time"

	"github.com/Dhinesh71/bustrackingsystem/pkg/util"
	"github.com/cenkalti/backoff/v4"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/rs/zerolog/log"
)

// Client indexes audit events into Elasticsearch. Indexing is strictly
// best-effort: a nil or unconfigured client silently discards documents.
type Client struct {
	es *elasticsearch.Client

	indexRequests chan indexRequest
}

type indexRequest struct {
	indexName string
	document  []byte
}

// Connect returns a nil client when no Elasticsearch address is configured,
// unless required is set.
func Connect(required bool) (*Client, error) {
	address := util.GetEnvironmentVariable("BUSTRACKING_ELASTICSEARCH_ADDRESS", "")

	if address == "" && !required {
		log.Info().Msg("Skipping Elasticsearch setup")
		return nil, nil
	} else if address == "" && required {
		log.Fatal().Msg("Elasticsearch configuration not set")
	}

	retryBackoff := backoff.NewExponentialBackOff()

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{address},
		Username:  util.GetEnvironmentVariable("BUSTRACKING_ELASTICSEARCH_USERNAME", ""),
		Password:  util.GetEnvironmentVariable("BUSTRACKING_ELASTICSEARCH_PASSWORD", ""),

		RetryOnStatus: []int{502, 503, 504, 429},

		RetryBackoff: func(i int) time.Duration {
			if i == 1 {
				retryBackoff.Reset()
			}
			return retryBackoff.NextBackOff()
		},
		MaxRetries: 5,
	})
	if err != nil {
		return nil, err
	}

	if _, err := es.Info(); err != nil {
		return nil, err
	}

	client := &Client{
		es:            es,
		indexRequests: make(chan indexRequest, 10000),
	}

	go client.runIndexer()

	log.Info().Msgf("Elasticsearch client setup for %s", address)

	return client, nil
}

// IndexRequest queues a document for indexing. Never blocks the caller - when
// the queue is full the document is dropped.
func (c *Client) IndexRequest(indexName string, document []byte) {
	if c == nil {
		return
	}

	select {
	case c.indexRequests <- indexRequest{indexName: indexName, document: document}:
	default:
		log.Debug().Str("index", indexName).Msg("Elasticsearch index queue full, dropping document")
	}
}

func (c *Client) runIndexer() {
	for item := range c.indexRequests {
		req := esapi.IndexRequest{
			Index: item.indexName,
			Body:  bytes.NewReader(item.document),
		}

		res, err := req.Do(context.Background(), c.es)
		if err != nil {
			log.Error().Err(err).Msg("Error getting response")
			continue
		}

		if res.IsError() {
			log.Error().Msgf("[%s] Error indexing document", res.Status())
		}
		res.Body.Close()
	}
}
