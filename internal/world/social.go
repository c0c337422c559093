package world

import (
	"fmt"
	"sort"
)

// AddPost publishes a new post on the company feed.
func (s *Store) AddPost(author, content string,
	highEngagement bool,
) SocialPost {
	s.mu.Lock()
	defer s.mu.Unlock()

	post := SocialPost{
		ID:             s.ids.Next("post"),
		AuthorEmail:    normalizeEmail(author),
		Content:        content,
		Timestamp:      s.clock.Now(),
		Likes:          []string{},
		Comments:       []SocialComment{},
		HighEngagement: highEngagement,
	}
	s.posts[post.ID] = post

	return post
}

// AddComment appends a comment to a post.
func (s *Store) AddComment(postID, author,
	content string,
) (SocialComment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return SocialComment{}, fmt.Errorf("%w: %s", ErrPostNotFound,
			postID)
	}

	comment := SocialComment{
		ID:          s.ids.Next("comment"),
		PostID:      postID,
		AuthorEmail: normalizeEmail(author),
		Content:     content,
		Timestamp:   s.clock.Now(),
	}
	post.Comments = append(post.Comments, comment)
	s.posts[postID] = post

	return comment, nil
}

// ToggleLike adds the email to the post's like set, or removes it if already
// present. The like set never holds duplicates.
func (s *Store) ToggleLike(postID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPostNotFound, postID)
	}

	email = normalizeEmail(email)
	for i, liker := range post.Likes {
		if liker == email {
			post.Likes = append(
				post.Likes[:i], post.Likes[i+1:]...,
			)
			s.posts[postID] = post

			return nil
		}
	}

	post.Likes = append(post.Likes, email)
	s.posts[postID] = post

	return nil
}

// Post returns the post with the given ID.
func (s *Store) Post(id string) (SocialPost, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return SocialPost{}, false
	}

	return copyPost(p), true
}

// Posts returns the feed ordered newest first.
func (s *Store) Posts() []SocialPost {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SocialPost, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, copyPost(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})

	return out
}

func copyPost(p SocialPost) SocialPost {
	out := p
	out.Likes = append([]string(nil), p.Likes...)
	out.Comments = append([]SocialComment(nil), p.Comments...)

	return out
}
