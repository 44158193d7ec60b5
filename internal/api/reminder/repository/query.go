package reminderRepository

const (
	queryCreateReminder = `
		INSERT INTO reminders (
			id,
			user_id,
			message,
			due_at,
			delivery_method,
			status,
			is_recurring,
			recurrence_rule,
			snoozed_until,
			created_at,
			updated_at
		) VALUES (
			:id,
			:user_id,
			:message,
			:due_at,
			:delivery_method,
			:status,
			:is_recurring,
			:recurrence_rule,
			:snoozed_until,
			:created_at,
			:updated_at
		)
	`

	queryGetReminderByID = `
		SELECT id, user_id, message, due_at, delivery_method, status,
			is_recurring, recurrence_rule, snoozed_until, created_at, updated_at
		FROM reminders
		WHERE id = :id
	`

	queryListRemindersByUser = `
		SELECT id, user_id, message, due_at, delivery_method, status,
			is_recurring, recurrence_rule, snoozed_until, created_at, updated_at
		FROM reminders
		WHERE user_id = :user_id AND status = ANY(:statuses)
		ORDER BY due_at ASC
	`

	// Snoozed reminders come due again once snoozed_until passes.
	queryListDueReminders = `
		SELECT id, user_id, message, due_at, delivery_method, status,
			is_recurring, recurrence_rule, snoozed_until, created_at, updated_at
		FROM reminders
		WHERE (status = 'PENDING' AND due_at <= :now)
		   OR (status = 'SNOOZED' AND snoozed_until IS NOT NULL AND snoozed_until <= :now)
		ORDER BY due_at ASC
	`

	queryUpdateReminder = `
		UPDATE reminders SET
			message = :message,
			due_at = :due_at,
			delivery_method = :delivery_method,
			updated_at = :updated_at
		WHERE id = :id
	`

	queryUpdateReminderStatus = `
		UPDATE reminders SET status = :status, updated_at = :updated_at
		WHERE id = :id
	`

	querySnoozeReminder = `
		UPDATE reminders SET
			status = 'SNOOZED',
			snoozed_until = :until,
			updated_at = :updated_at
		WHERE id = :id
	`

	queryCreateVoiceCall = `
		INSERT INTO voice_calls (
			id, user_id, reminder_id, phone_number, message, status,
			provider_id, created_at, updated_at
		) VALUES (
			:id, :user_id, :reminder_id, :phone_number, :message, :status,
			:provider_id, :created_at, :updated_at
		)
	`

	queryUpdateVoiceCallStatus = `
		UPDATE voice_calls SET status = :status, updated_at = :updated_at
		WHERE provider_id = :provider_id
	`

	queryGetUserByID = `
		SELECT id, username, phone_number, timezone, created_at, updated_at
		FROM users
		WHERE id = :id
	`
)
