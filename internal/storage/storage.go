package storage

import (
	"context"
	"errors"
)

// ErrNoKey возвращается, когда ключа нет в хранилище
var ErrNoKey = errors.New("no such key")

// KV блокирующее key-value хранилище JSON-документов. Каждая запись
// перезаписывает значение ключа целиком; транзакций и батчинга нет.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
