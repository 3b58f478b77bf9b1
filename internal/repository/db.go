package repository

import (
	"context"
	"database/sql"
)

// DBTX 数据库执行接口（*sql.DB 和 *sql.Tx 都满足）
// 流水线在单个事务内完成认领→处理→落库→消费，
// 各Repository通过该接口同时支持事务内外两种调用方式
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
