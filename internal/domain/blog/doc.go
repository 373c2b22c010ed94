// Package blog holds the blog post record and the rules its fields obey.
package blog
