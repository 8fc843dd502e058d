package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/chenBenjamin97/money-lockon/pkg/utils"
	"github.com/gin-gonic/gin"
)

//SetRouter returns the status API: live detection status, the class list and the files of the last capture
func SetRouter(board *Board, captureDir string, classes []string) *gin.Engine {
	r := gin.Default()

	apiRoutes := r.Group("/api")

	apiRoutes.GET("/Status", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, board.Status())
	})

	apiRoutes.GET("/Classes", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, classes)
	})

	apiRoutes.GET("/Captures", func(ctx *gin.Context) {
		if names, err := utils.ListDir(captureDir); err != nil {
			ctx.Status(http.StatusInternalServerError)
		} else {
			ctx.JSON(http.StatusOK, names)
		}
	})

	apiRoutes.GET("/Capture", func(ctx *gin.Context) {
		name := ctx.Request.URL.Query().Get("name")
		if name == "" {
			ctx.Status(http.StatusNotAcceptable) //missing url parameter
			return
		}

		//only plain names of files inside the capture directory
		names, err := utils.ListDir(captureDir)
		if err != nil {
			ctx.Status(http.StatusInternalServerError)
			return
		}
		if name != filepath.Base(name) || !utils.InSlice(name, names) {
			ctx.Status(http.StatusNotFound)
			return
		}

		capturePath := filepath.Join(captureDir, name)
		if st, err := os.Stat(capturePath); err != nil || st.IsDir() {
			ctx.Status(http.StatusNotFound)
			return
		}

		http.ServeFile(ctx.Writer, ctx.Request, capturePath)
	})

	return r
}
