package blog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/evolution-x/site-metadata/internal/console"
	"github.com/evolution-x/site-metadata/internal/domain/blog"
	"github.com/evolution-x/site-metadata/internal/logger"
	"github.com/evolution-x/site-metadata/internal/repository/artifact"
	"github.com/evolution-x/site-metadata/internal/repository/marker"
)

// Tool is the name the creator logs and locks under.
const Tool = "create-blog"

const (
	// IndexFile lists the ids of every post.
	IndexFile = "blogs.json"
	// PostsDir holds one <id>.json per post.
	PostsDir = "posts"
	// BackgroundsDir holds the selectable .webp backgrounds.
	BackgroundsDir = "post_backgrounds"
	// backgroundExt is the extension of selectable backgrounds.
	backgroundExt = ".webp"
)

var (
	// ErrNoInput is returned when stdin ends while a value is still needed.
	ErrNoInput = errors.New("input ended before all values were given")
	// errPostExists is returned when the post file of the next id is already there.
	errPostExists = errors.New("post already exists")
)

// Options are inputs accepted by the create-blog entry point.
// Empty fields are prompted for on In.
type Options struct {
	// Root is the directory holding blogs.json, posts and post_backgrounds.
	Root string

	Background string
	GitHub     string
	Author     string
	Title      string
	Content    string
	Date       string

	// In answers the prompts.
	In io.Reader
	// Out receives prompts and the summary.
	Out io.Writer
}

// creator holds the state of one post creation.
type creator struct {
	store   *artifact.Store
	scanner *bufio.Scanner
	out     io.Writer
}

// Run creates one post and registers its id.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, Tool)

	root := opts.Root
	if root == "" {
		root = "."
	}

	in, out := opts.In, opts.Out
	if in == nil {
		in = os.Stdin
	}

	if out == nil {
		out = os.Stdout
	}

	lock, err := marker.Acquire(ctx, filepath.Join(root, marker.Filename(Tool)))
	if err != nil {
		return err
	}

	defer func() {
		if releaseErr := lock.Release(); releaseErr != nil {
			logger.WarnKV(ctx, "Failed to release marker", "error", releaseErr)
		}
	}()

	c := &creator{
		store:   artifact.NewStore(root),
		scanner: bufio.NewScanner(in),
		out:     out,
	}

	return c.create(ctx, opts)
}

func (c *creator) create(ctx context.Context, opts *Options) error {
	ids, err := c.loadIDs()
	if err != nil {
		return err
	}

	post := blog.Post{ID: blog.NextID(ids)}

	_, _ = fmt.Fprintf(c.out, "Creating blog entry with ID %d...\n", post.ID)

	backgrounds, err := c.backgrounds()
	if err != nil {
		return err
	}

	if post.Background, err = c.background(opts.Background, backgrounds); err != nil {
		return err
	}

	if post.GitHub, err = c.value(opts.GitHub, "Enter the author's GitHub username: ", blog.ValidateGitHub); err != nil {
		return err
	}

	if post.Author, err = c.value(opts.Author, "Enter the author: ", blog.ValidateAuthor); err != nil {
		return err
	}

	if post.Title, err = c.value(opts.Title, "Enter the title of the blog: ", nil); err != nil {
		return err
	}

	if post.Content, err = c.value(opts.Content, "Enter the content of the blog: ", nil); err != nil {
		return err
	}

	if post.Date, err = c.value(opts.Date, "Enter the date (MM-DD-YYYY): ", blog.ValidateDate); err != nil {
		return err
	}

	post.GitHub = strings.TrimSpace(post.GitHub)

	if err = post.Validate(); err != nil {
		return err
	}

	rel := filepath.Join(PostsDir, strconv.Itoa(post.ID)+".json")

	created, err := c.store.CreateJSON(rel, post)
	if err != nil {
		return fmt.Errorf("write post: %w", err)
	}

	if !created {
		return fmt.Errorf("%s: %w", rel, errPostExists)
	}

	if err = c.store.WriteJSON(IndexFile, append(ids, post.ID)); err != nil {
		return fmt.Errorf("write %s: %w", IndexFile, err)
	}

	logger.InfoKV(ctx, "Created blog post", "id", post.ID, "path", rel)

	console.Successf(c.out, "\nBlog created and saved successfully!")
	_, _ = fmt.Fprintf(c.out,
		"Blog ID: %d\nBackground: %s\nGithub: %s\nAuthor: %s\nTitle: %s\nContent: %s\nDate: %s\n",
		post.ID, post.Background, post.GitHub, post.Author, post.Title, post.Content, post.Date)

	return nil
}

// loadIDs reads blogs.json, which may not exist yet.
func (c *creator) loadIDs() ([]int, error) {
	exists, err := c.store.Exists(IndexFile)
	if err != nil || !exists {
		return []int{}, err
	}

	var ids []int
	if err = c.store.ReadJSON(IndexFile, &ids); err != nil {
		return nil, err
	}

	return ids, nil
}

// backgrounds lists the names of post_backgrounds/*.webp, sorted.
func (c *creator) backgrounds() ([]string, error) {
	dir, err := c.store.Path(BackgroundsDir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("list backgrounds: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if name, ok := strings.CutSuffix(entry.Name(), backgroundExt); ok && !entry.IsDir() {
			names = append(names, name)
		}
	}

	slices.Sort(names)

	if len(names) == 0 {
		return nil, blog.ErrNoBackgrounds
	}

	return names, nil
}

// background resolves the flag value or asks for a choice from the list.
func (c *creator) background(given string, available []string) (string, error) {
	if given != "" {
		return blog.ResolveBackground(given, available)
	}

	console.List(c.out, "Available background images", numbered(available))

	for {
		answer, err := c.ask("Select a background by name or number: ")
		if err != nil {
			return "", err
		}

		background, err := blog.ResolveBackground(answer, available)
		if err == nil {
			return background, nil
		}

		console.Actionf(c.out, "Error: %v. Please select a valid number.", err)
	}
}

// value returns given when it is valid, or prompts until validate accepts an
// answer. A given value that fails validation is an error.
func (c *creator) value(given, prompt string, validate func(string) error) (string, error) {
	if validate == nil {
		validate = func(string) error { return nil }
	}

	if given != "" {
		return given, validate(given)
	}

	for {
		answer, err := c.ask(prompt)
		if err != nil {
			return "", err
		}

		if err = validate(answer); err == nil {
			return answer, nil
		}

		console.Actionf(c.out, "Error: %v. Please try again.", err)
	}
}

// ask prints prompt and reads one line.
func (c *creator) ask(prompt string) (string, error) {
	_, _ = io.WriteString(c.out, prompt)

	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", fmt.Errorf("read answer: %w", err)
		}

		return "", ErrNoInput
	}

	return strings.TrimRight(c.scanner.Text(), "\r"), nil
}

func numbered(items []string) []string {
	lines := make([]string, 0, len(items))
	for i, item := range items {
		lines = append(lines, strconv.Itoa(i+1)+". "+item)
	}

	return lines
}
