package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive-api/internal/database"
	"github.com/taskhive/taskhive-api/internal/models"
)

var ErrCommentNotFound = errors.New("comment not found")

type CommentService struct {
	db *database.DB
}

func NewCommentService(db *database.DB) *CommentService {
	return &CommentService{db: db}
}

func (s *CommentService) Create(ctx context.Context, itemID, authorID uuid.UUID, content string) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO comments (item_id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, item_id, author_id, content, created_at, updated_at
	`, itemID, authorID, content).Scan(
		&comment.ID, &comment.ItemID, &comment.AuthorID, &comment.Content,
		&comment.CreatedAt, &comment.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return &comment, nil
}

func (s *CommentService) GetByID(ctx context.Context, commentID uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, item_id, author_id, content, created_at, updated_at
		FROM comments WHERE id = $1
	`, commentID).Scan(
		&comment.ID, &comment.ItemID, &comment.AuthorID, &comment.Content,
		&comment.CreatedAt, &comment.UpdatedAt,
	)
	if err != nil {
		return nil, ErrCommentNotFound
	}
	return &comment, nil
}

func (s *CommentService) GetByItem(ctx context.Context, itemID uuid.UUID) ([]models.Comment, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT c.id, c.item_id, c.author_id, c.content, c.created_at, c.updated_at,
		       u.id, u.email, u.name, u.avatar_url, u.provider, u.is_staff, u.is_active, u.created_at, u.updated_at
		FROM comments c
		JOIN users u ON c.author_id = u.id
		WHERE c.item_id = $1
		ORDER BY c.created_at
	`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var comment models.Comment
		var author models.User
		if err := rows.Scan(
			&comment.ID, &comment.ItemID, &comment.AuthorID, &comment.Content,
			&comment.CreatedAt, &comment.UpdatedAt,
			&author.ID, &author.Email, &author.Name, &author.AvatarURL,
			&author.Provider, &author.IsStaff, &author.IsActive, &author.CreatedAt, &author.UpdatedAt,
		); err != nil {
			return nil, err
		}
		comment.Author = &author
		comments = append(comments, comment)
	}
	return comments, nil
}

func (s *CommentService) Delete(ctx context.Context, commentID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, commentID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrCommentNotFound
	}
	return nil
}
