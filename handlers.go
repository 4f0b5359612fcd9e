package main

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"px01/models"
	"px01/pkg/passport"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm/clause"
)

// maxUploadBytes caps passport photo uploads; phone camera JPEGs stay well
// under this.
const maxUploadBytes = 10 << 20

func setupRoutes(r *gin.Engine) {
	r.GET("/healthz", healthHandler)
	authGroup := r.Group("")
	authGroup.Use(jwtAuthMiddleware())
	authGroup.POST("/extract", extractHandler)
	authGroup.GET("/extractions", listExtractionsHandler)
	authGroup.GET("/extractions/:id", getExtractionHandler)
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// jwtAuthMiddleware verifies bearer tokens issued by the platform's auth
// service; this service only checks the shared-secret HMAC signature and
// records the subject for result scoping.
func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		tokenString := authHeader[7:]
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		subject, _ := claims["sub"].(string)
		if subject == "" {
			subject, _ = claims["username"].(string)
		}
		c.Set("subject", subject)
		c.Next()
	}
}

func subjectFromContext(c *gin.Context) string {
	v, _ := c.Get("subject")
	s, _ := v.(string)
	return s
}

// extractHandler accepts a multipart passport photo, runs the extraction
// pipeline and returns the structured record. The Tesseract engine is
// acquired per request and released when the request ends.
func extractHandler(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open upload"})
		return
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload"})
		return
	}

	eng, err := passport.NewTesseractEngine()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ocr_unavailable"})
		return
	}
	defer eng.Close()

	pipe := passport.NewPipeline(eng)
	rec, err := pipe.Extract(c.Request.Context(), passport.RawImage{
		Data: data,
		MIME: file.Header.Get("Content-Type"),
	})
	if err != nil {
		status, code := extractionErrorStatus(err)
		c.JSON(status, gin.H{"error": code})
		return
	}

	if db != nil {
		row := models.Extraction{
			Subject:        subjectFromContext(c),
			FileName:       file.Filename,
			FirstName:      rec.FirstName,
			LastName:       rec.LastName,
			PassportNumber: rec.PassportNumber,
			Nationality:    rec.Nationality,
			DateOfBirth:    rec.DateOfBirth,
			Sex:            rec.Sex,
			ExpiryDate:     rec.ExpiryDate,
			MRZValid:       rec.MRZValid,
			Confidence:     rec.Confidence,
		}
		// one row per (subject, file name); a re-upload refreshes the result
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "subject"}, {Name: "file_name"}},
			UpdateAll: true,
		}).Create(&row).Error; err != nil {
			// extraction succeeded; a failed insert should not hide the result
			c.JSON(http.StatusOK, gin.H{"record": rec, "persisted": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"record": rec, "persisted": true, "id": row.ID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": rec, "persisted": false})
}

func extractionErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, passport.ErrDecode):
		return http.StatusUnprocessableEntity, "decode_failed"
	case errors.Is(err, passport.ErrEngineUnavailable):
		return http.StatusServiceUnavailable, "ocr_unavailable"
	case errors.Is(err, passport.ErrTextTooSparse):
		return http.StatusUnprocessableEntity, "ocr_too_sparse"
	case errors.Is(err, passport.ErrNoUsableFields):
		return http.StatusUnprocessableEntity, "no_usable_fields"
	default:
		return http.StatusInternalServerError, "extraction_failed"
	}
}

// listExtractionsHandler returns the caller's persisted results, newest first.
func listExtractionsHandler(c *gin.Context) {
	if db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence disabled"})
		return
	}
	var rows []models.Extraction
	q := db.Where("subject = ?", subjectFromContext(c)).Order("id DESC")
	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	if err := q.Limit(limit).Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"extractions": rows})
}

func getExtractionHandler(c *gin.Context) {
	if db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence disabled"})
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var row models.Extraction
	if err := db.Where("id = ? AND subject = ?", id, subjectFromContext(c)).First(&row).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, row)
}
