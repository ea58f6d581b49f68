package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/fundwit/go-commons/types"
)

// ActiveESClient is created from ELASTICSEARCH_URL by InitESClient.
var ActiveESClient *elasticsearch.Client

var (
	IndexFunc              = Index
	DeleteDocumentByIdFunc = DeleteDocumentById
	DropIndexFunc          = DropIndex
)

func InitESClient() error {
	client, err := elasticsearch.NewDefaultClient()
	if err != nil {
		return err
	}
	ActiveESClient = client
	return nil
}

func Index(index string, id types.ID, doc interface{}) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      index,
		DocumentID: id.String(),
		Body:       bytes.NewReader(buf.Bytes()),
		Refresh:    "true",
	}

	res, err := req.Do(context.Background(), ActiveESClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := ioutil.ReadAll(res.Body)
		return fmt.Errorf("index document %s/%s: %s %s", index, id, res.Status(), string(body))
	}
	return nil
}

func DeleteDocumentById(index string, id types.ID) error {
	req := esapi.DeleteRequest{Index: index, DocumentID: id.String(), Refresh: "true"}
	res, err := req.Do(context.Background(), ActiveESClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		body, _ := ioutil.ReadAll(res.Body)
		return fmt.Errorf("delete document %s/%s: %s %s", index, id, res.Status(), string(body))
	}
	return nil
}

func DropIndex(index string) error {
	res, err := ActiveESClient.Indices.Delete([]string{index})
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		body, _ := ioutil.ReadAll(res.Body)
		return fmt.Errorf("drop index %s: %s %s", index, res.Status(), string(body))
	}
	return nil
}
