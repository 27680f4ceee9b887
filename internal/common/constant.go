package common

// AuthorizationHeaderName carries the bearer token on inbound HTTP requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only accepted authorization scheme.
const BearerScheme = "Bearer"

// Revalidation tags understood by the front-end cache webhook.
const (
	TagBlogPosts = "blog-posts"
	TagProjects  = "projects"
)
