package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go-cashbook-ws/internal/access"
	"go-cashbook-ws/internal/invite"
	"go-cashbook-ws/internal/model"
	"go-cashbook-ws/internal/repository"
	"go-cashbook-ws/internal/ws"
	"go-cashbook-ws/pkg/docstore"
	"go-cashbook-ws/pkg/mailer"
)

type InvitationService interface {
	Invite(ctx context.Context, id Identity, businessID string, req *InviteRequest) (*InvitationResult, error)
	Preview(token string) (*invite.Payload, error)
	Accept(ctx context.Context, id Identity, token string) (*model.Business, error)
}

type InviteRequest struct {
	Email string     `json:"email" validate:"required,email"`
	Role  model.Role `json:"role" validate:"required,oneof=PARTNER STAFF"`
}

type InvitationResult struct {
	Token     string       `json:"token"`
	Link      string       `json:"link"`
	ExpiresAt time.Time    `json:"expiresAt"`
	EmailID   string       `json:"emailId,omitempty"`
	Member    model.Member `json:"member"`
}

type InvitationConfig struct {
	AppURL   string
	MailFrom string
}

type invitationService struct {
	workspaces
	codec  *invite.Codec
	mailer mailer.Mailer
	cfg    InvitationConfig
}

func NewInvitationService(repo repository.WorkspaceRepository, hub *ws.Hub, log *slog.Logger, codec *invite.Codec, m mailer.Mailer, cfg InvitationConfig) InvitationService {
	return &invitationService{
		workspaces: newWorkspaces(repo, hub, log),
		codec:      codec,
		mailer:     m,
		cfg:        cfg,
	}
}

// Invite emails a signed invitation link and records the invitee as an
// INVITED member. Nothing is recorded when the email cannot be sent.
func (s *invitationService) Invite(ctx context.Context, id Identity, businessID string, req *InviteRequest) (*InvitationResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	doc, l, err := s.businessLedger(ctx, id, businessID)
	if err != nil {
		return nil, err
	}
	b, role, err := memberBusiness(doc, businessID, id.UserID)
	if err != nil {
		return nil, err
	}
	if !access.CanManageTeam(role) {
		return nil, forbidden("only owners and partners can invite members")
	}
	member, err := invitedMember(b, email, req.Role, s.now())
	if err != nil {
		return nil, err
	}

	token, expires, err := s.codec.Issue(invite.Payload{
		Email:        email,
		Role:         req.Role,
		BusinessID:   b.ID,
		BusinessName: b.Name,
		InvitedBy:    id.UserID,
		Host:         l.owner.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("issue invitation: %w", err)
	}
	link := strings.TrimRight(s.cfg.AppURL, "/") + "/invite/" + token

	msg, err := mailer.InvitationMessage(s.cfg.MailFrom, email, mailer.Invitation{
		InviterName:   b.Member(id.UserID).Name,
		BusinessName:  b.Name,
		Role:          string(req.Role),
		Link:          link,
		ExpiresInDays: int(invite.TTL / (24 * time.Hour)),
	})
	if err != nil {
		return nil, fmt.Errorf("render invitation: %w", err)
	}
	emailID, err := s.mailer.Send(ctx, msg)
	if err != nil {
		s.log.Error("invitation email failed", "business_id", businessID, "to", email, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}

	_, err = s.updateLedger(ctx, id, l, func(doc *model.Workspace) error {
		b, role, err := memberBusiness(doc, businessID, id.UserID)
		if err != nil {
			return err
		}
		if !access.CanManageTeam(role) {
			return forbidden("only owners and partners can invite members")
		}
		if m := b.MemberByEmail(email); m != nil {
			if m.Status == model.MemberActive {
				return ErrAlreadyMember
			}
			m.Role = member.Role
			m.JoinedAt = member.JoinedAt
			member = *m
			return nil
		}
		b.Members = append(b.Members, member)
		return nil
	})
	if err != nil {
		s.log.Warn("invitation sent but member not recorded", "business_id", businessID, "email_id", emailID, "error", err)
		return nil, err
	}

	s.log.Info("invitation sent", "business_id", businessID, "role", req.Role, "email_id", emailID)
	s.publishLedger(id, l, ws.Event{Action: "member_invited", BusinessID: businessID, Data: member})

	return &InvitationResult{
		Token:     token,
		Link:      link,
		ExpiresAt: expires,
		EmailID:   emailID,
		Member:    member,
	}, nil
}

// invitedMember is the roster entry an invitation to email will leave: a
// refreshed INVITED entry, or a new placeholder.
func invitedMember(b *model.Business, email string, role model.Role, now time.Time) (model.Member, error) {
	if m := b.MemberByEmail(email); m != nil {
		if m.Status == model.MemberActive {
			return model.Member{}, ErrAlreadyMember
		}
		out := *m
		out.Role = role
		out.JoinedAt = now
		return out, nil
	}
	return model.Member{
		User:     model.User{ID: model.NewID("u"), Name: strings.Split(email, "@")[0], Email: email},
		Role:     role,
		Status:   model.MemberInvited,
		JoinedAt: now,
	}, nil
}

func (s *invitationService) Preview(token string) (*invite.Payload, error) {
	return s.codec.Decode(token)
}

// Accept joins the caller to the invited business. The roster in the host
// document is updated too when it can be reached; cashbooks of the business
// are then served from there.
func (s *invitationService) Accept(ctx context.Context, id Identity, token string) (*model.Business, error) {
	p, err := s.codec.Decode(token)
	if err != nil {
		return nil, err
	}
	if !id.User().SameEmail(p.Email) {
		return nil, ErrEmailMismatch
	}

	host := p.Host
	if host == "" {
		host = p.InvitedBy
	}
	if host == id.UserID {
		host = ""
	}

	var joined model.Business
	_, err = s.update(ctx, id, func(doc *model.Workspace) error {
		now := s.now()
		self := model.Member{User: doc.User, Role: p.Role, Status: model.MemberActive, JoinedAt: now}

		b := doc.Business(p.BusinessID)
		if b == nil {
			doc.Businesses = append(doc.Businesses, model.Business{
				ID:        p.BusinessID,
				Name:      p.BusinessName,
				Members:   []model.Member{self},
				CreatedAt: now,
				HostID:    host,
			})
			b = &doc.Businesses[len(doc.Businesses)-1]
		} else if m := b.Member(id.UserID); m != nil {
			if m.Role == model.RoleOwner {
				return ErrAlreadyMember
			}
			m.Role = p.Role
			m.Status = model.MemberActive
			b.HostID = host
		} else {
			b.RemoveMemberByEmail(p.Email)
			b.Members = append(b.Members, self)
			b.HostID = host
		}
		doc.ActiveBusinessID = b.ID
		joined = *b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(id.UserID, ws.Event{Action: "business_joined", BusinessID: joined.ID, Data: joined})
	if host != "" {
		s.activateInHost(ctx, host, p, id.User())
	}
	return &joined, nil
}

func (s *invitationService) activateInHost(ctx context.Context, host string, p *invite.Payload, acceptor model.User) {
	owner := docstore.Owner{ID: host}
	_, err := s.repo.Update(ctx, owner, nil, func(doc *model.Workspace) error {
		b := doc.Business(p.BusinessID)
		if b == nil {
			return ErrBusinessNotFound
		}
		m := b.MemberByEmail(p.Email)
		if m == nil {
			return ErrMemberNotFound
		}
		m.User = acceptor
		m.Role = p.Role
		m.Status = model.MemberActive
		m.JoinedAt = s.now()
		return nil
	})
	if err != nil {
		s.log.Warn("could not update host roster", "host_id", host, "business_id", p.BusinessID, "error", err)
		return
	}
	s.publish(host, ws.Event{Action: "member_joined", BusinessID: p.BusinessID, Data: acceptor})
}
