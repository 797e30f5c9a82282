package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive-api/internal/database"
	"github.com/taskhive/taskhive-api/internal/models"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrNotAuthor    = errors.New("only the author can modify this post")
)

type FeedService struct {
	db *database.DB
}

func NewFeedService(db *database.DB) *FeedService {
	return &FeedService{db: db}
}

func (s *FeedService) Create(ctx context.Context, authorID uuid.UUID, content string) (*models.FeedPost, error) {
	var post models.FeedPost
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO feed_posts (author_id, content)
		VALUES ($1, $2)
		RETURNING id, author_id, content, created_at, updated_at
	`, authorID, content).Scan(
		&post.ID, &post.AuthorID, &post.Content, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return &post, nil
}

func (s *FeedService) List(ctx context.Context, limit int) ([]models.FeedPost, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT fp.id, fp.author_id, fp.content, fp.created_at, fp.updated_at,
		       u.id, u.email, u.name, u.avatar_url, u.provider, u.is_staff, u.is_active, u.created_at, u.updated_at
		FROM feed_posts fp
		JOIN users u ON fp.author_id = u.id
		ORDER BY fp.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []models.FeedPost
	for rows.Next() {
		var post models.FeedPost
		var author models.User
		if err := rows.Scan(
			&post.ID, &post.AuthorID, &post.Content, &post.CreatedAt, &post.UpdatedAt,
			&author.ID, &author.Email, &author.Name, &author.AvatarURL,
			&author.Provider, &author.IsStaff, &author.IsActive, &author.CreatedAt, &author.UpdatedAt,
		); err != nil {
			return nil, err
		}
		post.Author = &author
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *FeedService) Delete(ctx context.Context, postID, userID uuid.UUID) error {
	var authorID uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `SELECT author_id FROM feed_posts WHERE id = $1`, postID).Scan(&authorID)
	if err != nil {
		return ErrPostNotFound
	}
	if authorID != userID {
		return ErrNotAuthor
	}

	_, err = s.db.Pool.Exec(ctx, `DELETE FROM feed_posts WHERE id = $1`, postID)
	return err
}
