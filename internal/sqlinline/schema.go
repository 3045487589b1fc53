// Package sqlinline holds the DDL applied at startup. Statements are
// idempotent so every instance can run them unconditionally.
package sqlinline

const SchemaUsers = `
create table if not exists users (
    id             text primary key,
    username       text not null default '',
    email          text not null unique,
    preferred_lang text not null default '',
    image          text,
    plan           text not null default 'free',
    created_at     timestamptz not null default now(),
    updated_at     timestamptz not null default now()
);
`

const SchemaChats = `
create table if not exists chats (
    id         text primary key,
    type       text not null,
    name       text not null default '',
    created_by text not null,
    created_at timestamptz not null default now()
);
`

const SchemaChatParticipants = `
create table if not exists chat_participants (
    chat_id  text not null references chats(id) on delete cascade,
    user_id  text not null,
    joined_at timestamptz not null default now(),
    primary key (chat_id, user_id)
);
`

const SchemaMessages = `
create table if not exists messages (
    id               text primary key,
    chat_id          text not null references chats(id) on delete cascade,
    sender_id        text not null,
    type             text not null,
    content          jsonb not null,
    original_content text not null default '',
    file_url         text not null default '',
    created_at       timestamptz not null default now()
);
create index if not exists messages_chat_created_idx on messages (chat_id, created_at);
`

const SchemaInvitations = `
create table if not exists invitations (
    id      text primary key,
    chat_id text not null references chats(id) on delete cascade,
    email   text not null,
    sent_at timestamptz not null default now()
);
create index if not exists invitations_chat_idx on invitations (chat_id);
`

const SchemaUsageCounters = `
create table if not exists usage_counters (
    user_id      text not null,
    resource     text not null,
    period_start timestamptz not null,
    count        bigint not null default 0,
    updated_at   timestamptz not null default now(),
    primary key (user_id, resource, period_start)
);
`

const SchemaUsageEvents = `
create table if not exists usage_events (
    id         uuid primary key,
    user_id    text not null,
    resource   text not null,
    allowed    boolean not null,
    created_at timestamptz not null default now()
);
create index if not exists usage_events_user_idx on usage_events (user_id, created_at);
`

// All lists every statement in dependency order.
func All() []string {
	return []string{
		SchemaUsers,
		SchemaChats,
		SchemaChatParticipants,
		SchemaMessages,
		SchemaInvitations,
		SchemaUsageCounters,
		SchemaUsageEvents,
	}
}
