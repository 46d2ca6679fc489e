package database

// Message queries
const (
	insertMessageQuery = `
		INSERT INTO messages (
			direction, phone, body, content_type, kind,
			message_id, reply_to_message_id, is_reply, status,
			conversation_id, media_path
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectMessageByVendorIDQuery = `
		SELECT id, direction, phone, body, content_type, kind,
			   message_id, reply_to_message_id, is_reply, status,
			   conversation_id, media_path, created_at, updated_at
		FROM messages
		WHERE message_id = ?
	`

	updateMessageStatusQuery = `
		UPDATE messages
		SET status = ?,
			conversation_id = CASE WHEN ? != '' THEN ? ELSE conversation_id END,
			updated_at = CURRENT_TIMESTAMP
		WHERE message_id = ?
	`

	attachMediaQuery = `
		UPDATE messages
		SET media_path = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	countMessagesQuery = `SELECT COUNT(*) FROM messages WHERE direction = ?`
)

// Notification log queries
const (
	insertNotificationLogQuery = `
		INSERT INTO notification_logs (template, meta_data) VALUES (?, ?)
	`

	countNotificationLogsQuery = `SELECT COUNT(*) FROM notification_logs`
)

// Template queries
const (
	upsertTemplateQuery = `
		INSERT INTO templates (name, template_id, actual_name, language_code, header_type, status)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			template_id = excluded.template_id,
			actual_name = excluded.actual_name,
			language_code = excluded.language_code,
			header_type = excluded.header_type,
			status = excluded.status
	`

	selectTemplateQuery = `
		SELECT name, template_id, actual_name, language_code, header_type, status
		FROM templates
		WHERE name = ?
	`

	updateTemplateStatusQuery = `
		UPDATE templates SET status = ? WHERE template_id = ?
	`
)

// Site and user queries
const (
	upsertSiteQuery = `
		INSERT INTO sites (name, site_name, site_abbr) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			site_name = excluded.site_name,
			site_abbr = excluded.site_abbr
	`

	selectSiteByAbbrQuery = `
		SELECT name, site_name, site_abbr FROM sites WHERE site_abbr = ?
	`

	upsertUserQuery = `
		INSERT INTO users (email, full_name) VALUES (?, ?)
		ON CONFLICT(email) DO UPDATE SET full_name = excluded.full_name
	`

	selectUserFullNameQuery = `SELECT full_name FROM users WHERE email = ?`
)

// System notification queries
const (
	insertSystemNotificationQuery = `
		INSERT INTO system_notifications (user_email, subject, body, document_type, document_name)
		VALUES (?, ?, ?, ?, ?)
	`
)

// Reporting queries
const (
	insertProductionEntryQuery = `
		INSERT INTO production_entries (
			site_name, mining_item_code, mining_item_name, uom,
			tonnage, posting_date, posting_time, docstatus
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectYearlyProductionQuery = `
		SELECT mining_item_name, uom, SUM(tonnage)
		FROM production_entries
		WHERE docstatus = 1 AND site_name = ? AND strftime('%Y', posting_date) = ?
		GROUP BY mining_item_code
		ORDER BY mining_item_name
	`

	selectLastProductionPostingQuery = `
		SELECT posting_date, posting_time
		FROM production_entries
		WHERE docstatus = 1 AND site_name = ? AND strftime('%Y', posting_date) = ?
		ORDER BY posting_date DESC, posting_time DESC
		LIMIT 1
	`

	insertStockpileEntryQuery = `
		INSERT INTO stockpile_entries (
			site_name, stockpile_name, mining_item_name, uom,
			qty_by_survey, posting_datetime
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	selectStockpileBalanceQuery = `
		SELECT stockpile_name, mining_item_name, uom, SUM(qty_by_survey)
		FROM stockpile_entries
		WHERE site_name = ? AND strftime('%Y', posting_datetime) = ?
		GROUP BY stockpile_name, mining_item_name
		ORDER BY stockpile_name, mining_item_name
	`

	selectStockpileLastUpdateQuery = `
		SELECT MAX(posting_datetime)
		FROM stockpile_entries
		WHERE site_name = ? AND strftime('%Y', posting_datetime) = ?
	`
)
