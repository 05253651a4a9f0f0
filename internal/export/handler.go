package export

import (
	"fmt"
	"net/http"
	"time"

	"github.com/HabitForge/habitforge-backend/internal/platform/database"
	"github.com/HabitForge/habitforge-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// ExportCSVHandler 处理 POST /api/export/csv 请求，
// 以附件形式返回当前账户的打卡记录。
func ExportCSVHandler(c *gin.Context) {
	email := user.CurrentEmail(c)

	data, err := BuildCSV(database.DB, email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "导出失败"})
		return
	}

	filename := fmt.Sprintf("habitforge_export_%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
