package clients

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	xueceTimeout = 15 * time.Second
	xueceSuccess = "SUCCESS"

	CardTypeExam      = "exam"
	CardTypeClasswork = "classwork"
)

// AnswerCard is the cut layout of an answer sheet and its printable PDF.
type AnswerCard struct {
	Params string `json:"params"`
	Name   string `json:"name"`
	PDFURL string `json:"pdf_url"`
}

// AnswerCardFetcher loads answer cards from the exam platform.
type AnswerCardFetcher interface {
	AnswerCard(ctx context.Context, env, cardType, paperID string) (*AnswerCard, error)
}

// XueceClient talks to the exam platform. Each call logs in first because
// the platform's tokens are short lived.
type XueceClient struct {
	baseURLs map[string]string
	user     string
	password string
}

func NewXueceClient(baseURLs map[string]string, user, password string) *XueceClient {
	return &XueceClient{baseURLs: baseURLs, user: user, password: password}
}

type xueceEnvelope struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

type loginResponse struct {
	xueceEnvelope
	Data struct {
		AuthToken string `json:"authtoken"`
		User      struct {
			SchoolID interface{} `json:"schoolId"`
		} `json:"user"`
	} `json:"data"`
}

type examCardResponse struct {
	xueceEnvelope
	Data struct {
		CutParams     string `json:"cutparamJsonstr2"`
		ExamPaperName string `json:"examPaperName"`
		PDFURL        string `json:"pdfUrl"`
	} `json:"data"`
}

type classworkCardResponse struct {
	xueceEnvelope
	Data struct {
		AnswerCard struct {
			CutParams string `json:"cutParamJsonStr"`
			PDFURL    string `json:"pdfUrl"`
		} `json:"answercard"`
		Classwork struct {
			Name string `json:"name"`
		} `json:"classworkBaseVO"`
	} `json:"data"`
}

type session struct {
	token    string
	schoolID string
}

func timeout(ctx context.Context) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d < xueceTimeout {
			return d
		}
	}
	return xueceTimeout
}

func getJSON(ctx context.Context, rawURL string, s *session, out interface{}) error {
	a := fiber.Get(rawURL).Timeout(timeout(ctx))
	if s != nil {
		a.Set("Authtoken", s.token)
		a.Set("Xc-App-User-Schoolid", s.schoolID)
	}
	a.ContentType(fiber.MIMEApplicationJSON)
	if err := a.Parse(); err != nil {
		return errors.Wrapf(err, "invalid request to %s", rawURL)
	}

	code, body, errs := a.Struct(out)
	if len(errs) > 0 {
		return errors.Wrapf(errs[0], "request to %s failed", rawURL)
	}
	if code != fiber.StatusOK {
		return errors.Errorf("request to %s returned %d: %s", rawURL, code, body)
	}
	return nil
}

func (c *XueceClient) login(ctx context.Context, base string) (*session, error) {
	q := url.Values{}
	q.Set("username", c.user)
	q.Set("encryptpwd", c.password)
	q.Set("clienttype", "BROWSER")

	var resp loginResponse
	if err := getJSON(ctx, base+"/api/usercenter/nnauth/user/login?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data.AuthToken == "" {
		return nil, errors.Errorf("login failed: %s", resp.Msg)
	}
	return &session{token: resp.Data.AuthToken, schoolID: fmt.Sprint(resp.Data.User.SchoolID)}, nil
}

func (c *XueceClient) AnswerCard(ctx context.Context, env, cardType, paperID string) (*AnswerCard, error) {
	base, ok := c.baseURLs[env]
	if !ok {
		return nil, errors.Errorf("unknown environment %q", env)
	}
	s, err := c.login(ctx, base)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"env": env, "card_type": cardType, "paper_id": paperID}).Debug("fetching answer card")

	// Anything other than an exam card is looked up as classwork.
	if cardType != CardTypeExam {
		var resp classworkCardResponse
		err := getJSON(ctx, base+"/api/classworkcenter/nnauth/claswork/answercardpreview?classworkId="+url.QueryEscape(paperID), s, &resp)
		if err != nil {
			return nil, err
		}
		if resp.Code != xueceSuccess {
			return nil, errors.New(resp.Msg)
		}
		return &AnswerCard{
			Params: resp.Data.AnswerCard.CutParams,
			Name:   resp.Data.Classwork.Name,
			PDFURL: resp.Data.AnswerCard.PDFURL,
		}, nil
	}

	var resp examCardResponse
	err = getJSON(ctx, base+"/api/examcenter/teacher/answercard/editinfo?exampaperId="+url.QueryEscape(paperID), s, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Code != xueceSuccess {
		return nil, errors.New(resp.Msg)
	}
	return &AnswerCard{
		Params: resp.Data.CutParams,
		Name:   resp.Data.ExamPaperName,
		PDFURL: resp.Data.PDFURL,
	}, nil
}
