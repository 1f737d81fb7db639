package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/yatube/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

// mongoPost is the document shape of a post. Ids are numeric so that URLs
// look the same whichever store holds the posts.
type mongoPost struct {
	ID       uint      `bson:"_id"`
	Text     string    `bson:"text"`
	PubDate  time.Time `bson:"pub_date"`
	AuthorID uint      `bson:"author_id"`
	GroupID  *uint     `bson:"group_id,omitempty"`
	Image    string    `bson:"image,omitempty"`
}

// MongoPostRepository keeps posts in MongoDB. Authors, groups and the follow
// graph stay in PostgreSQL and are joined in application code.
type MongoPostRepository struct {
	posts    *mongo.Collection
	counters *mongo.Collection
	pgDB     *gorm.DB
	follows  FollowRepository
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database, pgDB *gorm.DB) *MongoPostRepository {
	return &MongoPostRepository{
		posts:    db.Collection("posts"),
		counters: db.Collection("counters"),
		pgDB:     pgDB,
		follows:  NewPostgresFollowRepository(pgDB),
	}
}

// EnsureIndexes creates the indexes used by the listings.
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.posts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "pub_date", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "pub_date", Value: -1}}},
		{Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "pub_date", Value: -1}}},
	})
	return err
}

func (r *MongoPostRepository) nextID(ctx context.Context) (uint, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "posts"},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("allocate post id: %w", err)
	}
	return uint(counter.Seq), nil
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}
	post.ID = id
	if post.PubDate.IsZero() {
		post.PubDate = time.Now()
	}
	_, err = r.posts.InsertOne(ctx, toMongoPost(post))
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var doc mongoPost
	if err := r.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	posts, err := r.hydrate(ctx, []mongoPost{doc})
	if err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// UpdatePost updates an existing post in MongoDB
func (r *MongoPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	set := bson.M{"text": post.Text, "image": post.Image}
	update := bson.M{"$set": set}
	if post.GroupID != nil {
		set["group_id"] = *post.GroupID
	} else {
		update["$unset"] = bson.M{"group_id": ""}
	}
	res, err := r.posts.UpdateOne(ctx, bson.M{"_id": post.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoPostRepository) CountPosts(ctx context.Context, filter PostFilter) (int64, error) {
	f, err := r.filter(ctx, filter)
	if err != nil {
		return 0, err
	}
	return r.posts.CountDocuments(ctx, f)
}

func (r *MongoPostRepository) ListPosts(ctx context.Context, filter PostFilter, offset, limit int) ([]models.Post, error) {
	f, err := r.filter(ctx, filter)
	if err != nil {
		return nil, err
	}
	findOptions := options.Find().
		SetSkip(int64(offset)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "pub_date", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.posts.Find(ctx, f, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []mongoPost
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return r.hydrate(ctx, docs)
}

func (r *MongoPostRepository) filter(ctx context.Context, filter PostFilter) (bson.M, error) {
	f := bson.M{}
	if filter.GroupID != 0 {
		f["group_id"] = filter.GroupID
	}
	if filter.AuthorID != 0 {
		f["author_id"] = filter.AuthorID
	}
	if filter.FollowerID != 0 {
		ids, err := r.follows.GetFollowingIDs(ctx, filter.FollowerID)
		if err != nil {
			return nil, err
		}
		if ids == nil {
			ids = []uint{}
		}
		// combined with AuthorID the two conditions must both hold
		if filter.AuthorID != 0 {
			f["$and"] = bson.A{bson.M{"author_id": bson.M{"$in": ids}}}
		} else {
			f["author_id"] = bson.M{"$in": ids}
		}
	}
	return f, nil
}

// hydrate loads authors and groups for docs from PostgreSQL.
func (r *MongoPostRepository) hydrate(ctx context.Context, docs []mongoPost) ([]models.Post, error) {
	authorIDs := make([]uint, 0, len(docs))
	groupIDs := make([]uint, 0, len(docs))
	for _, d := range docs {
		authorIDs = append(authorIDs, d.AuthorID)
		if d.GroupID != nil {
			groupIDs = append(groupIDs, *d.GroupID)
		}
	}

	authors := make(map[uint]models.User)
	if len(authorIDs) > 0 {
		var users []models.User
		if err := r.pgDB.WithContext(ctx).Where("id IN ?", authorIDs).Find(&users).Error; err != nil {
			return nil, err
		}
		for _, u := range users {
			authors[u.ID] = u
		}
	}

	groups := make(map[uint]models.Group)
	if len(groupIDs) > 0 {
		var gs []models.Group
		if err := r.pgDB.WithContext(ctx).Where("id IN ?", groupIDs).Find(&gs).Error; err != nil {
			return nil, err
		}
		for _, g := range gs {
			groups[g.ID] = g
		}
	}

	posts := make([]models.Post, len(docs))
	for i, d := range docs {
		posts[i] = models.Post{
			ID:       d.ID,
			Text:     d.Text,
			PubDate:  d.PubDate,
			AuthorID: d.AuthorID,
			Author:   authors[d.AuthorID],
			GroupID:  d.GroupID,
			Image:    d.Image,
		}
		if d.GroupID != nil {
			if g, ok := groups[*d.GroupID]; ok {
				posts[i].Group = &g
			}
		}
	}
	return posts, nil
}

func toMongoPost(p *models.Post) mongoPost {
	return mongoPost{
		ID:       p.ID,
		Text:     p.Text,
		PubDate:  p.PubDate,
		AuthorID: p.AuthorID,
		GroupID:  p.GroupID,
		Image:    p.Image,
	}
}
