// Package blog creates website blog posts from flags or interactive prompts.
package blog
