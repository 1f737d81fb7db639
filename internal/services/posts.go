package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"strings"

	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/pkg/storage"
)

// PostInput is the validated content of the create and edit forms. Image
// is nil when no file was uploaded.
type PostInput struct {
	Text    string
	GroupID uint
	Image   *multipart.FileHeader
}

// PostDetail is everything the post page shows.
type PostDetail struct {
	Post            *models.Post
	Comments        []models.Comment
	AuthorPostCount int64
}

// PostService authors posts and comments.
type PostService struct {
	posts    repositories.PostRepository
	groups   repositories.GroupRepository
	comments repositories.CommentRepository
	blobs    storage.BlobStore
}

func NewPostService(posts repositories.PostRepository, groups repositories.GroupRepository, comments repositories.CommentRepository, blobs storage.BlobStore) *PostService {
	return &PostService{posts: posts, groups: groups, comments: comments, blobs: blobs}
}

// Groups lists the choices of the group selector.
func (s *PostService) Groups(ctx context.Context) ([]models.Group, error) {
	return s.groups.ListGroups(ctx)
}

func (s *PostService) Detail(ctx context.Context, id uint) (PostDetail, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return PostDetail{}, lookupErr(fmt.Sprintf("post %d", id), err)
	}
	comments, err := s.comments.GetCommentsByPostID(ctx, id)
	if err != nil {
		return PostDetail{}, fmt.Errorf("load comments: %w", err)
	}
	count, err := s.posts.CountPosts(ctx, repositories.PostFilter{AuthorID: post.AuthorID})
	if err != nil {
		return PostDetail{}, fmt.Errorf("count author posts: %w", err)
	}
	return PostDetail{Post: post, Comments: comments, AuthorPostCount: count}, nil
}

// Create publishes a new post by authorID.
func (s *PostService) Create(ctx context.Context, authorID uint, in PostInput) (*models.Post, error) {
	if authorID == 0 {
		return nil, ErrUnauthorized
	}
	post := &models.Post{AuthorID: authorID}
	if err := s.apply(ctx, post, in); err != nil {
		return nil, err
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		s.discardImage(ctx, post.Image)
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// Editable returns the post when userID may edit it, ErrForbidden otherwise.
func (s *PostService) Editable(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, lookupErr(fmt.Sprintf("post %d", postID), err)
	}
	if post.AuthorID != userID {
		return nil, fmt.Errorf("post %d: %w", postID, ErrForbidden)
	}
	return post, nil
}

// Update replaces the text and group of a post owned by userID. The image
// is only replaced when a new one is uploaded.
func (s *PostService) Update(ctx context.Context, userID, postID uint, in PostInput) (*models.Post, error) {
	post, err := s.Editable(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	prevImage := post.Image
	if err := s.apply(ctx, post, in); err != nil {
		return post, err
	}
	if err := s.posts.UpdatePost(ctx, post); err != nil {
		if post.Image != prevImage {
			s.discardImage(ctx, post.Image)
		}
		return nil, fmt.Errorf("update post %d: %w", postID, err)
	}
	return post, nil
}

// AddComment attaches a comment by authorID to an existing post.
func (s *PostService) AddComment(ctx context.Context, authorID, postID uint, text string) (*models.Comment, error) {
	if authorID == 0 {
		return nil, ErrUnauthorized
	}
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return nil, lookupErr(fmt.Sprintf("post %d", postID), err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ValidationError{Fields: map[string]string{"text": "This field is required."}}
	}
	comment := &models.Comment{PostID: postID, AuthorID: authorID, Text: text}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// discardImage removes a blob stored for a post that was never saved.
func (s *PostService) discardImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.blobs.Delete(ctx, key); err != nil {
		log.Printf("discard image %s: %v", key, err)
	}
}

// apply validates in and copies it onto post, storing a new image if one
// was uploaded.
func (s *PostService) apply(ctx context.Context, post *models.Post, in PostInput) error {
	verr := &ValidationError{}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		verr.add("text", "This field is required.")
	}

	var group *models.Group
	if in.GroupID != 0 {
		g, err := s.groups.GetGroupByID(ctx, in.GroupID)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			verr.add("group", "Select a valid choice.")
		case err != nil:
			return fmt.Errorf("load group %d: %w", in.GroupID, err)
		default:
			group = g
		}
	}

	var img *storage.Image
	if in.Image != nil {
		var err error
		img, err = storage.ReadImage(in.Image)
		switch {
		case errors.Is(err, storage.ErrNotImage):
			verr.add("image", "Upload a valid image.")
		case errors.Is(err, storage.ErrTooLarge):
			verr.add("image", "The image is too large.")
		case err != nil:
			return err
		}
	}

	if err := verr.orNil(); err != nil {
		return err
	}

	if img != nil {
		key, err := storage.SaveImage(ctx, s.blobs, img)
		if err != nil {
			return err
		}
		post.Image = key
	}
	post.Text = text
	post.Group = group
	post.GroupID = nil
	if group != nil {
		post.GroupID = &group.ID
	}
	return nil
}
