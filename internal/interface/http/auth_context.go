package http

import (
	"github.com/gin-gonic/gin"

	"github.com/yanqian/lifeboard/internal/domain/auth"
)

const identityKey = "auth_identity"

func setIdentity(c *gin.Context, identity auth.Identity) {
	c.Set(identityKey, identity)
}

func getIdentity(c *gin.Context) (auth.Identity, bool) {
	value, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	identity, ok := value.(auth.Identity)
	return identity, ok
}
