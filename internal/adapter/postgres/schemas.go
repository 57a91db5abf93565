package postgres

import (
	"github.com/jackc/pgx/v5"

	"adreward/internal/core/domain"
	"adreward/internal/core/port"
)

var userSchema = &schema[domain.User]{
	table: "users",
	columns: []string{
		"phone", "username", "password_hash", "balance", "total_earnings", "today_earnings",
		"total_views", "today_views", "today_date", "level", "invite_code", "status",
		"last_active", "created_at",
	},
	indexes: map[port.Index]index{
		port.IndexPhone:    {column: "phone", unique: true},
		port.IndexUsername: {column: "username"},
	},
	values: func(u *domain.User) []any {
		return []any{
			u.Phone, u.Username, u.PasswordHash, u.Balance, u.TotalEarnings, u.TodayEarnings,
			u.TotalViews, u.TodayViews, u.TodayDate, u.Level, u.InviteCode, string(u.Status),
			u.LastActive, u.CreatedAt,
		}
	},
	scan: func(row pgx.CollectableRow) (domain.User, error) {
		var u domain.User
		err := row.Scan(
			&u.ID, &u.Phone, &u.Username, &u.PasswordHash, &u.Balance, &u.TotalEarnings, &u.TodayEarnings,
			&u.TotalViews, &u.TodayViews, &u.TodayDate, &u.Level, &u.InviteCode, &u.Status,
			&u.LastActive, &u.CreatedAt,
		)
		return u, err
	},
	setID: func(u *domain.User, id int64) { u.ID = id },
}

var adSchema = &schema[domain.Ad]{
	table: "ads",
	columns: []string{
		"title", "description", "reward", "duration", "is_active", "max_views", "current_views",
		"created_at", "updated_at",
	},
	indexes: map[port.Index]index{
		port.IndexActive: {column: "is_active"},
	},
	values: func(a *domain.Ad) []any {
		return []any{
			a.Title, a.Description, a.Reward, a.Duration, a.IsActive, a.MaxViews, a.CurrentViews,
			a.CreatedAt, a.UpdatedAt,
		}
	},
	scan: func(row pgx.CollectableRow) (domain.Ad, error) {
		var a domain.Ad
		err := row.Scan(
			&a.ID, &a.Title, &a.Description, &a.Reward, &a.Duration, &a.IsActive, &a.MaxViews, &a.CurrentViews,
			&a.CreatedAt, &a.UpdatedAt,
		)
		return a, err
	},
	setID: func(a *domain.Ad, id int64) { a.ID = id },
}

var recordSchema = &schema[domain.ViewRecord]{
	table:   "view_records",
	columns: []string{"user_id", "ad_id", "viewed_at", "completed", "duration", "reward", "ad_title"},
	indexes: map[port.Index]index{
		port.IndexUserID: {column: "user_id"},
		port.IndexAdID:   {column: "ad_id"},
	},
	values: func(r *domain.ViewRecord) []any {
		return []any{r.UserID, r.AdID, r.ViewedAt, r.Completed, r.Duration, r.Reward, r.AdTitle}
	},
	scan: func(row pgx.CollectableRow) (domain.ViewRecord, error) {
		var r domain.ViewRecord
		err := row.Scan(&r.ID, &r.UserID, &r.AdID, &r.ViewedAt, &r.Completed, &r.Duration, &r.Reward, &r.AdTitle)
		return r, err
	},
	setID: func(r *domain.ViewRecord, id int64) { r.ID = id },
}

var earningSchema = &schema[domain.Earning]{
	table:   "earnings",
	columns: []string{"user_id", "amount", "type", "ad_id", "date", "description", "created_at"},
	indexes: map[port.Index]index{
		port.IndexUserID: {column: "user_id"},
		port.IndexDate:   {column: "date"},
	},
	values: func(e *domain.Earning) []any {
		return []any{e.UserID, e.Amount, string(e.Type), e.AdID, e.Date, e.Description, e.CreatedAt}
	},
	scan: func(row pgx.CollectableRow) (domain.Earning, error) {
		var e domain.Earning
		err := row.Scan(&e.ID, &e.UserID, &e.Amount, &e.Type, &e.AdID, &e.Date, &e.Description, &e.CreatedAt)
		return e, err
	},
	setID: func(e *domain.Earning, id int64) { e.ID = id },
}

var adminSchema = &schema[domain.Admin]{
	table:   "admins",
	columns: []string{"username", "password_hash", "role", "created_at", "last_login"},
	indexes: map[port.Index]index{
		port.IndexUsername: {column: "username", unique: true},
	},
	values: func(a *domain.Admin) []any {
		return []any{a.Username, a.PasswordHash, a.Role, a.CreatedAt, a.LastLogin}
	},
	scan: func(row pgx.CollectableRow) (domain.Admin, error) {
		var a domain.Admin
		err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Role, &a.CreatedAt, &a.LastLogin)
		return a, err
	},
	setID: func(a *domain.Admin, id int64) { a.ID = id },
}

var dailyStatSchema = &schema[domain.DailyStat]{
	table: "daily_stats",
	columns: []string{
		"date", "total_views", "total_earnings", "unique_users", "completion_rate",
		"reset_at", "created_at", "updated_at",
	},
	indexes: map[port.Index]index{
		port.IndexDate: {column: "date", unique: true},
	},
	values: func(d *domain.DailyStat) []any {
		return []any{
			d.Date, d.TotalViews, d.TotalEarnings, d.UniqueUsers, d.CompletionRate,
			d.ResetAt, d.CreatedAt, d.UpdatedAt,
		}
	},
	scan: func(row pgx.CollectableRow) (domain.DailyStat, error) {
		var d domain.DailyStat
		err := row.Scan(
			&d.ID, &d.Date, &d.TotalViews, &d.TotalEarnings, &d.UniqueUsers, &d.CompletionRate,
			&d.ResetAt, &d.CreatedAt, &d.UpdatedAt,
		)
		return d, err
	},
	setID: func(d *domain.DailyStat, id int64) { d.ID = id },
}
