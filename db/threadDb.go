package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"julenisse/models"
)

type ThreadRepository interface {
	AppendMessages(ctx context.Context, threadID string, messages ...models.AgentMessage) error
	GetMessages(ctx context.Context, threadID string) ([]models.AgentMessage, error)
}

type SQLThreadRepository struct {
	db *Database
}

func NewThreadRepository(database *Database) *SQLThreadRepository {
	return &SQLThreadRepository{db: database}
}

func (r *SQLThreadRepository) AppendMessages(ctx context.Context, threadID string, messages ...models.AgentMessage) error {
	if len(messages) == 0 {
		return nil
	}

	tx, err := r.db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := r.db.Rebind(`
		INSERT INTO conversation_messages (thread_id, role, content, tool_calls, tool_results)
		VALUES (?, ?, ?, ?, ?)`)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare message insert: %w", err)
	}
	defer stmt.Close()

	for _, msg := range messages {
		toolCalls, err := marshalOptional(msg.ToolCalls, len(msg.ToolCalls))
		if err != nil {
			return fmt.Errorf("failed to marshal tool calls: %w", err)
		}

		toolResults, err := marshalOptional(msg.ToolResults, len(msg.ToolResults))
		if err != nil {
			return fmt.Errorf("failed to marshal tool results: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, threadID, msg.Role, msg.Content, toolCalls, toolResults); err != nil {
			return fmt.Errorf("failed to append message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit messages: %w", err)
	}

	return nil
}

func (r *SQLThreadRepository) GetMessages(ctx context.Context, threadID string) ([]models.AgentMessage, error) {
	query := r.db.Rebind(`
		SELECT role, content, tool_calls, tool_results
		FROM conversation_messages
		WHERE thread_id = ?
		ORDER BY id ASC`)

	rows, err := r.db.db.QueryContext(ctx, query, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.AgentMessage, 0)
	for rows.Next() {
		var msg models.AgentMessage
		var toolCalls, toolResults sql.NullString

		if err := rows.Scan(&msg.Role, &msg.Content, &toolCalls, &toolResults); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		if toolCalls.Valid && toolCalls.String != "" {
			if err := json.Unmarshal([]byte(toolCalls.String), &msg.ToolCalls); err != nil {
				return nil, fmt.Errorf("failed to unmarshal tool calls: %w", err)
			}
		}

		if toolResults.Valid && toolResults.String != "" {
			if err := json.Unmarshal([]byte(toolResults.String), &msg.ToolResults); err != nil {
				return nil, fmt.Errorf("failed to unmarshal tool results: %w", err)
			}
		}

		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over messages: %w", err)
	}

	return messages, nil
}

func marshalOptional(v any, n int) (sql.NullString, error) {
	if n == 0 {
		return sql.NullString{}, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}

	return sql.NullString{String: string(data), Valid: true}, nil
}
