package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"wanotify/internal/migrations"
	"wanotify/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// Database is the SQLite-backed store for messages, audit logs, templates
// and the chatbot's reference data.
type Database struct {
	db        *sql.DB
	encryptor *encryptor
}

func New(dbPath string) (*Database, error) {
	if len(dbPath) == 0 || dbPath[0] == '\x00' {
		return nil, fmt.Errorf("invalid database path")
	}

	file, err := os.OpenFile(dbPath, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create database file: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close database file: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(migrations.GetInitialSchema()); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	enc, err := newEncryptor()
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize encryptor: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize encryptor: %w", err)
	}

	return &Database{db: db, encryptor: enc}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// SaveMessage persists a message and returns its row id. Phone and body are
// encrypted at rest when encryption is enabled.
func (d *Database) SaveMessage(ctx context.Context, msg *models.Message) (int64, error) {
	phone, err := d.encryptor.EncryptIfEnabled(msg.Phone)
	if err != nil {
		return 0, fmt.Errorf("failed to encrypt phone: %w", err)
	}

	body, err := d.encryptor.EncryptIfEnabled(msg.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to encrypt body: %w", err)
	}

	res, err := d.db.ExecContext(ctx, insertMessageQuery,
		msg.Direction,
		phone,
		body,
		msg.ContentType,
		msg.Kind,
		msg.VendorMessageID,
		msg.ReplyToMessageID,
		msg.IsReply,
		msg.Status,
		msg.ConversationID,
		msg.MediaPath,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read message id: %w", err)
	}
	return id, nil
}

// GetMessageByVendorID returns the message with the given vendor message id,
// or nil when no such message exists.
func (d *Database) GetMessageByVendorID(ctx context.Context, vendorID string) (*models.Message, error) {
	msg := &models.Message{}
	var phone, body string

	err := d.db.QueryRowContext(ctx, selectMessageByVendorIDQuery, vendorID).Scan(
		&msg.ID,
		&msg.Direction,
		&phone,
		&body,
		&msg.ContentType,
		&msg.Kind,
		&msg.VendorMessageID,
		&msg.ReplyToMessageID,
		&msg.IsReply,
		&msg.Status,
		&msg.ConversationID,
		&msg.MediaPath,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	msg.Phone, err = d.encryptor.DecryptIfEnabled(phone)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt phone: %w", err)
	}
	msg.Body, err = d.encryptor.DecryptIfEnabled(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt body: %w", err)
	}

	return msg, nil
}

// UpdateMessageStatus applies a delivery-status callback. A missing vendor
// message id is a silent no-op: the callback may race ahead of the create.
func (d *Database) UpdateMessageStatus(ctx context.Context, vendorID, status, conversationID string) error {
	_, err := d.db.ExecContext(ctx, updateMessageStatusQuery,
		status, conversationID, conversationID, vendorID)
	if err != nil {
		return fmt.Errorf("failed to update message status: %w", err)
	}
	return nil
}

// AttachMediaToMessage records the downloaded media path on a stored message.
func (d *Database) AttachMediaToMessage(ctx context.Context, id int64, mediaPath string) error {
	_, err := d.db.ExecContext(ctx, attachMediaQuery, mediaPath, id)
	if err != nil {
		return fmt.Errorf("failed to attach media: %w", err)
	}
	return nil
}

func (d *Database) CountMessages(ctx context.Context, direction models.Direction) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, countMessagesQuery, direction).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return n, nil
}

// InsertNotificationLog appends an audit record.
func (d *Database) InsertNotificationLog(ctx context.Context, template, metaData string) error {
	_, err := d.db.ExecContext(ctx, insertNotificationLogQuery, template, metaData)
	if err != nil {
		return fmt.Errorf("failed to insert notification log: %w", err)
	}
	return nil
}

func (d *Database) CountNotificationLogs(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, countNotificationLogsQuery).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count notification logs: %w", err)
	}
	return n, nil
}

func (d *Database) SaveTemplate(ctx context.Context, tpl *models.Template) error {
	_, err := d.db.ExecContext(ctx, upsertTemplateQuery,
		tpl.Name, tpl.VendorID, tpl.ActualName, tpl.LanguageCode, tpl.HeaderType, tpl.Status)
	if err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}
	return nil
}

// GetTemplate returns the named template, or nil when unknown.
func (d *Database) GetTemplate(ctx context.Context, name string) (*models.Template, error) {
	tpl := &models.Template{}
	err := d.db.QueryRowContext(ctx, selectTemplateQuery, name).Scan(
		&tpl.Name, &tpl.VendorID, &tpl.ActualName, &tpl.LanguageCode, &tpl.HeaderType, &tpl.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return tpl, nil
}

// UpdateTemplateStatusByVendorID applies a template-approval callback as a
// direct bulk update keyed by the vendor-assigned template id.
func (d *Database) UpdateTemplateStatusByVendorID(ctx context.Context, vendorID, status string) error {
	_, err := d.db.ExecContext(ctx, updateTemplateStatusQuery, status, vendorID)
	if err != nil {
		return fmt.Errorf("failed to update template status: %w", err)
	}
	return nil
}

func (d *Database) SaveSite(ctx context.Context, site *models.Site) error {
	_, err := d.db.ExecContext(ctx, upsertSiteQuery, site.Name, site.SiteName, site.SiteAbbr)
	if err != nil {
		return fmt.Errorf("failed to save site: %w", err)
	}
	return nil
}

// GetSiteByAbbr resolves a site abbreviation, returning nil when unknown.
func (d *Database) GetSiteByAbbr(ctx context.Context, abbr string) (*models.Site, error) {
	site := &models.Site{}
	err := d.db.QueryRowContext(ctx, selectSiteByAbbrQuery, abbr).Scan(
		&site.Name, &site.SiteName, &site.SiteAbbr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get site: %w", err)
	}
	return site, nil
}

func (d *Database) SaveUser(ctx context.Context, user *models.User) error {
	_, err := d.db.ExecContext(ctx, upsertUserQuery, user.Email, user.FullName)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// GetUserFullName resolves an account email to a display name. Unknown
// accounts fall back to the email itself.
func (d *Database) GetUserFullName(ctx context.Context, email string) (string, error) {
	var name string
	err := d.db.QueryRowContext(ctx, selectUserFullNameQuery, email).Scan(&name)
	if err == sql.ErrNoRows {
		return email, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	return name, nil
}

func (d *Database) InsertSystemNotification(ctx context.Context, n *models.SystemNotification) error {
	_, err := d.db.ExecContext(ctx, insertSystemNotificationQuery,
		n.UserEmail, n.Subject, n.Body, n.DocumentType, n.DocumentName)
	if err != nil {
		return fmt.Errorf("failed to insert system notification: %w", err)
	}
	return nil
}

func (d *Database) InsertProductionEntry(ctx context.Context, siteName, itemCode, itemName, uom string, tonnage float64, postingDate, postingTime string) error {
	_, err := d.db.ExecContext(ctx, insertProductionEntryQuery,
		siteName, itemCode, itemName, uom, tonnage, postingDate, postingTime, 1)
	if err != nil {
		return fmt.Errorf("failed to insert production entry: %w", err)
	}
	return nil
}

// GetYearlyProduction aggregates submitted production entries for one site
// and year. Returns nil when the site has no data for that year.
func (d *Database) GetYearlyProduction(ctx context.Context, siteName, year string) (*models.YearlyProduction, error) {
	rows, err := d.db.QueryContext(ctx, selectYearlyProductionQuery, siteName, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query production: %w", err)
	}
	defer rows.Close()

	items := make(map[string]models.ProductionItem)
	for rows.Next() {
		var name, uom string
		var tonnage float64
		if err := rows.Scan(&name, &uom, &tonnage); err != nil {
			return nil, fmt.Errorf("failed to scan production row: %w", err)
		}
		items[name] = models.ProductionItem{Tonnage: tonnage, UOM: uom}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate production rows: %w", err)
	}

	if len(items) == 0 {
		return nil, nil
	}

	var postingDate, postingTime string
	err = d.db.QueryRowContext(ctx, selectLastProductionPostingQuery, siteName, year).
		Scan(&postingDate, &postingTime)
	if err != nil {
		return nil, fmt.Errorf("failed to query last posting: %w", err)
	}

	lastPosting, err := combineDatetime(postingDate, postingTime)
	if err != nil {
		return nil, err
	}

	return &models.YearlyProduction{Items: items, LastPostingAt: lastPosting}, nil
}

func (d *Database) InsertStockpileEntry(ctx context.Context, siteName, stockpileName, itemName, uom string, qty float64, postingDatetime string) error {
	_, err := d.db.ExecContext(ctx, insertStockpileEntryQuery,
		siteName, stockpileName, itemName, uom, qty, postingDatetime)
	if err != nil {
		return fmt.Errorf("failed to insert stockpile entry: %w", err)
	}
	return nil
}

// GetStockpileBalance aggregates surveyed stockpile balances for one site
// and year. Returns nil when no data exists.
func (d *Database) GetStockpileBalance(ctx context.Context, siteName, year string) (*models.StockpileBalance, error) {
	rows, err := d.db.QueryContext(ctx, selectStockpileBalanceQuery, siteName, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query stockpile balance: %w", err)
	}
	defer rows.Close()

	balances := make(map[string]map[string]models.StockpileQuantity)
	for rows.Next() {
		var stockpile, item, uom string
		var qty float64
		if err := rows.Scan(&stockpile, &item, &uom, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan stockpile row: %w", err)
		}
		if balances[stockpile] == nil {
			balances[stockpile] = make(map[string]models.StockpileQuantity)
		}
		balances[stockpile][item] = models.StockpileQuantity{QtyBySurvey: qty, UOM: uom}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stockpile rows: %w", err)
	}

	if len(balances) == 0 {
		return nil, nil
	}

	var lastUpdate string
	if err := d.db.QueryRowContext(ctx, selectStockpileLastUpdateQuery, siteName, year).Scan(&lastUpdate); err != nil {
		return nil, fmt.Errorf("failed to query stockpile last update: %w", err)
	}

	ts, err := time.Parse("2006-01-02 15:04:05", lastUpdate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stockpile last update: %w", err)
	}

	return &models.StockpileBalance{Balances: balances, LastUpdate: ts}, nil
}

func combineDatetime(date, clock string) (time.Time, error) {
	ts, err := time.Parse("2006-01-02 15:04:05", date+" "+clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse posting datetime: %w", err)
	}
	return ts, nil
}
