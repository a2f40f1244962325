package member

import (
	"errors"
	"os"
	"testing"

	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/platform/config"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/platform/database"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// 测试不依赖Redis，标记为不可用让所有缓存写入走跳过分支
	database.UpdateStatus(false, "")
	database.InitDB(config.SqliteConfig{Path: ":memory:"})
	if err := database.DB.AutoMigrate(&Member{}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestCreateMember(t *testing.T) {
	m, err := CreateMember("A001", "甲", false)
	require.NoError(t, err)
	require.Equal(t, "A001", m.Code)
	require.Equal(t, "甲", m.Name)
	require.False(t, m.IsAdmin)
}

func TestCreateMemberTrimsInput(t *testing.T) {
	m, err := CreateMember("  A002 ", " 乙 ", false)
	require.NoError(t, err)
	require.Equal(t, "A002", m.Code)
	require.Equal(t, "乙", m.Name)
}

func TestCreateMemberConflict(t *testing.T) {
	_, err := CreateMember("A003", "丙", false)
	require.NoError(t, err)

	_, err = CreateMember("A003", "另一个丙", false)
	require.ErrorIs(t, err, ErrCodeExists)
}

func TestCreateMemberValidation(t *testing.T) {
	_, err := CreateMember("", "无代码", false)
	require.ErrorIs(t, err, ErrInvalidMember)

	_, err = CreateMember("A004", "   ", false)
	require.ErrorIs(t, err, ErrInvalidMember)
}

func TestGetMemberByCodeNotFound(t *testing.T) {
	m, err := GetMemberByCode("MISSING")
	require.NoError(t, err)
	require.Nil(t, m)
}

func TestIsKnownMemberFallsBackToSQLite(t *testing.T) {
	_, err := CreateMember("A005", "戊", false)
	require.NoError(t, err)

	known, err := IsKnownMember("A005")
	require.NoError(t, err)
	require.True(t, known)

	known, err = IsKnownMember("MISSING")
	require.NoError(t, err)
	require.False(t, known)

	known, err = IsKnownMember("")
	require.NoError(t, err)
	require.False(t, known)
}

func TestListMembersFiltersAdmin(t *testing.T) {
	_, err := CreateMember("L001", "成员", false)
	require.NoError(t, err)
	_, err = CreateMember("L002", "队长", true)
	require.NoError(t, err)

	all, err := ListMembers(true)
	require.NoError(t, err)
	withoutAdmin, err := ListMembers(false)
	require.NoError(t, err)

	require.Greater(t, len(all), len(withoutAdmin))
	for _, m := range withoutAdmin {
		require.False(t, m.IsAdmin)
	}
}

func TestDeleteMemberRunsPurgeHooks(t *testing.T) {
	_, err := CreateMember("D001", "待删除", false)
	require.NoError(t, err)

	var purgedCode string
	RegisterPurgeHook("testdata", func(memberCode string) error {
		purgedCode = memberCode
		return nil
	})
	RegisterPurgeHook("brokenstep", func(memberCode string) error {
		return errors.New("清除失败")
	})
	defer func() { purgeHooks = nil }()

	report, err := DeleteMember("D001")
	require.NoError(t, err)
	require.NotNil(t, report)
	require.True(t, report.MemberDeleted)
	require.Equal(t, "D001", purgedCode)

	// 成功的步骤被记录，失败的步骤逐项上报且不中止后续步骤
	require.Contains(t, report.Purged, "testdata")
	require.Contains(t, report.Failures, "brokenstep")

	m, err := GetMemberByCode("D001")
	require.NoError(t, err)
	require.Nil(t, m)
}

func TestDeleteMemberNotFound(t *testing.T) {
	report, err := DeleteMember("MISSING")
	require.NoError(t, err)
	require.Nil(t, report)
}
