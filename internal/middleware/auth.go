package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/photon-webhook/internal/utils"
)

// AuthMiddleware Webhook与管理接口认证中间件
type AuthMiddleware struct {
	jwtManager    *utils.JWTManager
	webhookSecret string // Argon2哈希，配置中不保存明文
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *utils.JWTManager, webhookSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:    jwtManager,
		webhookSecret: webhookSecret,
	}
}

// RequireWebhookAuth 房间服务器Webhook认证
// 先校验X-Webhook-Secret共享密钥，再从转发的玩家令牌解析调用方身份
func (m *AuthMiddleware) RequireWebhookAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := c.GetHeader("X-Webhook-Secret")
		if secret == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "NO_SECRET",
				"message": "缺少Webhook密钥",
			})
			c.Abort()
			return
		}

		ok, err := utils.VerifySecret(secret, m.webhookSecret)
		if err != nil || !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "INVALID_SECRET",
				"message": "Webhook密钥不正确",
			})
			c.Abort()
			return
		}

		token := m.extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "NO_TOKEN",
				"message": "缺少玩家令牌",
			})
			c.Abort()
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "INVALID_TOKEN",
				"message": "无效的玩家令牌",
				"details": err.Error(),
			})
			c.Abort()
			return
		}

		// 调用方身份存入上下文，校验器据此比对UserId
		c.Set("playerID", claims.PlayerID)
		c.Set("nickname", claims.Nickname)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// RequireRole 需要特定角色的中间件（管理接口）
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "NO_TOKEN",
				"message": "缺少认证令牌",
			})
			c.Abort()
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "INVALID_TOKEN",
				"message": "无效的令牌",
				"details": err.Error(),
			})
			c.Abort()
			return
		}

		hasRole := false
		for _, role := range roles {
			if claims.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    "INSUFFICIENT_PERMISSION",
				"message": "权限不足",
			})
			c.Abort()
			return
		}

		c.Set("playerID", claims.PlayerID)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// extractToken 从请求中提取令牌
func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	// 1. 从Authorization Header获取 (Bearer Token)
	bearerToken := c.GetHeader("Authorization")
	if bearerToken != "" {
		parts := strings.Split(bearerToken, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	// 2. 从X-Player-Token Header获取（房间服务器转发的玩家令牌）
	if token := c.GetHeader("X-Player-Token"); token != "" {
		return token
	}

	return ""
}

// GetPlayerID 从上下文获取调用方玩家ID
func GetPlayerID(c *gin.Context) (string, bool) {
	if playerID, exists := c.Get("playerID"); exists {
		if id, ok := playerID.(string); ok {
			return id, true
		}
	}
	return "", false
}

// GetRole 从上下文获取角色
func GetRole(c *gin.Context) (string, bool) {
	if role, exists := c.Get("role"); exists {
		if r, ok := role.(string); ok {
			return r, true
		}
	}
	return "", false
}
